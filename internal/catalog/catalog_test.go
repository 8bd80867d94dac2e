package catalog

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key     int
		wantErr bool
	}{
		{-3, true},
		{0, true},
		{1, false},
		{440, false},
	}
	for _, tt := range tests {
		err := ValidateKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ValidateKey(%d) = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
		if err != nil && !IsValidation(err) {
			t.Fatalf("ValidateKey(%d) error %T is not a ValidationError", tt.key, err)
		}
	}
}

func TestNetworkErrorUnwrapsAndMatches(t *testing.T) {
	root := errors.New("connection refused")
	err := fmt.Errorf("fetch makes: %w", &NetworkError{Op: "GET /vehicles/getallmakes", Err: root})

	if !IsNetwork(err) {
		t.Fatalf("IsNetwork(%v) = false, want true", err)
	}
	if IsValidation(err) {
		t.Fatalf("IsValidation(%v) = true, want false", err)
	}
	if !errors.Is(err, root) {
		t.Fatalf("errors.Is should reach the wrapped transport error")
	}
	if got := (&NetworkError{Op: "op"}).Error(); got != "op: network error" {
		t.Fatalf("Error() = %q, want %q", got, "op: network error")
	}
}

func TestMatchesName(t *testing.T) {
	if !MatchesName("BMW", "") {
		t.Fatal("empty term should match")
	}
	if !MatchesName("BMW", "bmw") {
		t.Fatal("match should ignore case")
	}
	if !MatchesName("Mercedes-Benz", "DES-b") {
		t.Fatal("substring match should ignore case")
	}
	if MatchesName("Audi", "bmw") {
		t.Fatal("Audi should not match bmw")
	}
}

func TestKindString(t *testing.T) {
	if KindTypes.String() != "types" || KindModels.String() != "models" || KindMakes.String() != "makes" {
		t.Fatalf("unexpected kind names: %s %s %s", KindMakes, KindTypes, KindModels)
	}
	if Kind(42).String() != "unknown" {
		t.Fatalf("Kind(42) = %q, want unknown", Kind(42).String())
	}
}
