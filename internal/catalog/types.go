package catalog

import (
	"context"
	"strings"
)

// Make is a top-level catalog entry (a manufacturer).
type Make struct {
	ID   int
	Name string
}

// VehicleType is a classification scoped to one make.
type VehicleType struct {
	ID   int
	Name string
}

// VehicleModel is a model scoped to one make. MakeID is the owning key.
type VehicleModel struct {
	ID       int
	Name     string
	MakeID   int
	MakeName string
}

// Kind names the per-make collections the client caches.
type Kind int

const (
	KindMakes Kind = iota
	KindTypes
	KindModels
)

func (k Kind) String() string {
	switch k {
	case KindMakes:
		return "makes"
	case KindTypes:
		return "types"
	case KindModels:
		return "models"
	default:
		return "unknown"
	}
}

// DataSource fetches catalog data from the remote API.
// Implementations validate keys before doing any I/O.
type DataSource interface {
	FetchMakes(ctx context.Context) ([]Make, error)
	FetchTypesForMake(ctx context.Context, makeID int) ([]VehicleType, error)
	FetchModelsForMake(ctx context.Context, makeID int) ([]VehicleModel, error)
}

// MatchesName reports whether name contains term, ignoring case.
// An empty term matches everything.
func MatchesName(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}
