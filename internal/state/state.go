package state

import (
	"slices"

	"github.com/benbjohnson/immutable"

	"github.com/five82/vpick/internal/catalog"
)

// KeySet is a persistent set of make IDs. Add returns a new set sharing
// structure with the receiver; the receiver is never modified. The zero value
// is an empty set.
type KeySet struct {
	m *immutable.Map[int, struct{}]
}

// Has reports whether id is in the set.
func (k KeySet) Has(id int) bool {
	if k.m == nil {
		return false
	}
	_, ok := k.m.Get(id)
	return ok
}

// Add returns a set containing id.
func (k KeySet) Add(id int) KeySet {
	if k.Has(id) {
		return k
	}
	m := k.m
	if m == nil {
		m = immutable.NewMap[int, struct{}](nil)
	}
	return KeySet{m: m.Set(id, struct{}{})}
}

// Len returns the number of keys.
func (k KeySet) Len() int {
	if k.m == nil {
		return 0
	}
	return k.m.Len()
}

// Keys returns the members in ascending order.
func (k KeySet) Keys() []int {
	if k.m == nil {
		return nil
	}
	keys := make([]int, 0, k.m.Len())
	itr := k.m.Iterator()
	for !itr.Done() {
		id, _, _ := itr.Next()
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys
}

// State is an immutable snapshot of the catalog cache. Values are produced by
// Reduce only. Collections returned by accessors are shared with the snapshot
// and must not be modified.
type State struct {
	makes         []catalog.Make
	typesByMake   *immutable.Map[int, []catalog.VehicleType]
	modelsAll     []catalog.VehicleModel
	loadedTypes   KeySet
	loadedModels  KeySet
	currentMakeID int
	hasCurrent    bool
	loading       bool
	err           string
	searchTerm    string
}

// Initial returns the empty state a store starts from.
func Initial() State {
	return State{}
}

// Makes returns the top-level make list.
func (s State) Makes() []catalog.Make { return s.makes }

// Models returns every cached vehicle model across all makes.
func (s State) Models() []catalog.VehicleModel { return s.modelsAll }

// TypesFor returns the cached types for makeID and whether a slot exists.
func (s State) TypesFor(makeID int) ([]catalog.VehicleType, bool) {
	if s.typesByMake == nil {
		return nil, false
	}
	return s.typesByMake.Get(makeID)
}

// TypesByMakeLen returns the number of makes with a types slot.
func (s State) TypesByMakeLen() int {
	if s.typesByMake == nil {
		return 0
	}
	return s.typesByMake.Len()
}

// LoadedTypeKeys returns the keys whose types fetch completed successfully.
func (s State) LoadedTypeKeys() KeySet { return s.loadedTypes }

// LoadedModelKeys returns the keys whose models fetch completed successfully.
func (s State) LoadedModelKeys() KeySet { return s.loadedModels }

// CurrentMakeID returns the most recently requested make, if any.
func (s State) CurrentMakeID() (int, bool) { return s.currentMakeID, s.hasCurrent }

// Loading reports whether a fetch is believed to be outstanding.
func (s State) Loading() bool { return s.loading }

// Err returns the last fetch failure message, or "" when none.
func (s State) Err() string { return s.err }

// SearchTerm returns the make list filter.
func (s State) SearchTerm() string { return s.searchTerm }
