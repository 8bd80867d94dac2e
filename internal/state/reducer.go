package state

import (
	"github.com/benbjohnson/immutable"

	"github.com/five82/vpick/internal/catalog"
)

// Reduce applies a to s and returns the next state. It never modifies s or
// anything reachable from it, and it performs no I/O. Unknown actions return s.
// A per-make load for a key that is already loaded leaves loading as it was
// instead of raising it, because no terminal action follows a cache hit.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoadMakes:
		s.loading = true
		s.err = ""

	case LoadMakesSucceeded:
		s.makes = a.Makes
		s.loading = false

	case LoadMakesFailed:
		s.loading = false
		s.err = a.Err

	case LoadTypesForMake:
		s.err = ""
		s.currentMakeID, s.hasCurrent = a.MakeID, true
		// A cache hit produces no terminal action, so it must not raise the flag.
		if !s.loadedTypes.Has(a.MakeID) {
			s.loading = true
		}

	case LoadTypesForMakeSucceeded:
		s.typesByMake = typesMap(s.typesByMake).Set(a.MakeID, a.Types)
		s.loadedTypes = s.loadedTypes.Add(a.MakeID)
		s.loading = false

	case LoadTypesForMakeFailed:
		s.loading = false
		s.err = a.Err

	case LoadModelsForMake:
		s.err = ""
		s.currentMakeID, s.hasCurrent = a.MakeID, true
		if !s.loadedModels.Has(a.MakeID) {
			s.loading = true
		}

	case LoadModelsForMakeSucceeded:
		s.modelsAll = replaceModels(s.modelsAll, a.MakeID, a.Models)
		s.loadedModels = s.loadedModels.Add(a.MakeID)
		s.loading = false

	case LoadModelsForMakeFailed:
		s.loading = false
		s.err = a.Err

	case SetSearchTerm:
		s.searchTerm = a.Term

	case ClearSearchTerm:
		s.searchTerm = ""

	case ClearTypesCache:
		s.typesByMake = nil
		s.loadedTypes = KeySet{}

	case ClearModelsCache:
		s.modelsAll = nil
		s.loadedModels = KeySet{}

	case ClearAllCache:
		s.typesByMake = nil
		s.loadedTypes = KeySet{}
		s.modelsAll = nil
		s.loadedModels = KeySet{}
		s.currentMakeID, s.hasCurrent = 0, false
	}
	return s
}

func typesMap(m *immutable.Map[int, []catalog.VehicleType]) *immutable.Map[int, []catalog.VehicleType] {
	if m == nil {
		return immutable.NewMap[int, []catalog.VehicleType](nil)
	}
	return m
}

type modelKey struct {
	makeID int
	id     int
}

// replaceModels drops every entry owned by makeID and appends incoming,
// keeping at most one entry per (make, model) pair. Entries of other makes
// keep their order and are never rewritten.
func replaceModels(all []catalog.VehicleModel, makeID int, incoming []catalog.VehicleModel) []catalog.VehicleModel {
	next := make([]catalog.VehicleModel, 0, len(all)+len(incoming))
	seen := make(map[modelKey]struct{}, len(all)+len(incoming))
	for _, m := range all {
		if m.MakeID == makeID {
			continue
		}
		next = append(next, m)
		seen[modelKey{m.MakeID, m.ID}] = struct{}{}
	}
	for _, m := range incoming {
		k := modelKey{m.MakeID, m.ID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		next = append(next, m)
	}
	return next
}
