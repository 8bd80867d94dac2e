package catalog

import (
	"errors"
	"fmt"
)

// ValidationError reports an invalid make key. It is raised before any
// dispatch or fetch and never reaches the state's error field.
type ValidationError struct {
	Key int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid make id %d: must be positive", e.Key)
}

// NetworkError wraps a transport, HTTP or decode failure from the remote API.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return e.Op + ": network error"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidateKey returns a *ValidationError when makeID is not a usable key.
func ValidateKey(makeID int) error {
	if makeID <= 0 {
		return &ValidationError{Key: makeID}
	}
	return nil
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNetwork reports whether err is or wraps a *NetworkError.
func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}
