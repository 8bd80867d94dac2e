package state

import "github.com/five82/vpick/internal/catalog"

// ActionKind discriminates the action variants.
type ActionKind int

const (
	KindLoadMakes ActionKind = iota
	KindLoadMakesSucceeded
	KindLoadMakesFailed
	KindLoadTypesForMake
	KindLoadTypesForMakeSucceeded
	KindLoadTypesForMakeFailed
	KindLoadModelsForMake
	KindLoadModelsForMakeSucceeded
	KindLoadModelsForMakeFailed
	KindSetSearchTerm
	KindClearSearchTerm
	KindClearTypesCache
	KindClearModelsCache
	KindClearAllCache
)

var actionLabels = [...]string{
	KindLoadMakes:                  "[Vehicle] Load Makes",
	KindLoadMakesSucceeded:         "[Vehicle] Load Makes Success",
	KindLoadMakesFailed:            "[Vehicle] Load Makes Failure",
	KindLoadTypesForMake:           "[Vehicle] Load Vehicle Types By Make ID",
	KindLoadTypesForMakeSucceeded:  "[Vehicle] Load Vehicle Types By Make ID Success",
	KindLoadTypesForMakeFailed:     "[Vehicle] Load Vehicle Types By Make ID Failure",
	KindLoadModelsForMake:          "[Vehicle] Load Vehicle Models By Make ID",
	KindLoadModelsForMakeSucceeded: "[Vehicle] Load Vehicle Models By Make ID Success",
	KindLoadModelsForMakeFailed:    "[Vehicle] Load Vehicle Models By Make ID Failure",
	KindSetSearchTerm:              "[Vehicle] Set Search Term",
	KindClearSearchTerm:            "[Vehicle] Clear Search Term",
	KindClearTypesCache:            "[Vehicle] Clear Vehicle Types Cache",
	KindClearModelsCache:           "[Vehicle] Clear Vehicle Models Cache",
	KindClearAllCache:              "[Vehicle] Clear All Cache",
}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionLabels) {
		return "[Vehicle] Unknown"
	}
	return actionLabels[k]
}

// Action is a dispatched event. The concrete type carries the payload.
type Action interface {
	ActionKind() ActionKind
}

// LoadMakes requests the top-level make list. Every dispatch fetches.
type LoadMakes struct{}

// LoadMakesSucceeded carries the fetched make list.
type LoadMakesSucceeded struct {
	Makes []catalog.Make
}

// LoadMakesFailed records a failed make list fetch.
type LoadMakesFailed struct {
	Err string
}

// LoadTypesForMake requests the vehicle types of one make.
type LoadTypesForMake struct {
	MakeID int
}

// LoadTypesForMakeSucceeded carries the types fetched for MakeID.
type LoadTypesForMakeSucceeded struct {
	MakeID int
	Types  []catalog.VehicleType
}

// LoadTypesForMakeFailed records a failed types fetch. MakeID is informational;
// a failure never marks the key loaded.
type LoadTypesForMakeFailed struct {
	MakeID int
	Err    string
}

// LoadModelsForMake requests the vehicle models of one make.
type LoadModelsForMake struct {
	MakeID int
}

// LoadModelsForMakeSucceeded carries the models fetched for MakeID.
type LoadModelsForMakeSucceeded struct {
	MakeID int
	Models []catalog.VehicleModel
}

// LoadModelsForMakeFailed records a failed models fetch.
type LoadModelsForMakeFailed struct {
	MakeID int
	Err    string
}

// SetSearchTerm sets the make list filter.
type SetSearchTerm struct {
	Term string
}

// ClearSearchTerm resets the make list filter.
type ClearSearchTerm struct{}

// ClearTypesCache drops every cached vehicle type and loaded type key.
type ClearTypesCache struct{}

// ClearModelsCache drops every cached vehicle model and loaded model key.
type ClearModelsCache struct{}

// ClearAllCache drops both per-make caches and the current make.
// The make list is a separate cache domain and survives.
type ClearAllCache struct{}

func (LoadMakes) ActionKind() ActionKind                  { return KindLoadMakes }
func (LoadMakesSucceeded) ActionKind() ActionKind         { return KindLoadMakesSucceeded }
func (LoadMakesFailed) ActionKind() ActionKind            { return KindLoadMakesFailed }
func (LoadTypesForMake) ActionKind() ActionKind           { return KindLoadTypesForMake }
func (LoadTypesForMakeSucceeded) ActionKind() ActionKind  { return KindLoadTypesForMakeSucceeded }
func (LoadTypesForMakeFailed) ActionKind() ActionKind     { return KindLoadTypesForMakeFailed }
func (LoadModelsForMake) ActionKind() ActionKind          { return KindLoadModelsForMake }
func (LoadModelsForMakeSucceeded) ActionKind() ActionKind { return KindLoadModelsForMakeSucceeded }
func (LoadModelsForMakeFailed) ActionKind() ActionKind    { return KindLoadModelsForMakeFailed }
func (SetSearchTerm) ActionKind() ActionKind              { return KindSetSearchTerm }
func (ClearSearchTerm) ActionKind() ActionKind            { return KindClearSearchTerm }
func (ClearTypesCache) ActionKind() ActionKind            { return KindClearTypesCache }
func (ClearModelsCache) ActionKind() ActionKind           { return KindClearModelsCache }
func (ClearAllCache) ActionKind() ActionKind              { return KindClearAllCache }

// Validate rejects per-make loads with an unusable key.
func Validate(a Action) error {
	switch a := a.(type) {
	case LoadTypesForMake:
		return catalog.ValidateKey(a.MakeID)
	case LoadModelsForMake:
		return catalog.ValidateKey(a.MakeID)
	}
	return nil
}
