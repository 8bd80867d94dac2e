package ui

import (
	"github.com/five82/vpick/internal/catalog"
	"github.com/five82/vpick/internal/state"
)

// viewData is everything the screen renders. It is derived from the store
// through the shared memoized selectors and delivered as a viewMsg.
type viewData struct {
	makes  []catalog.Make
	all    []catalog.Make
	types  []catalog.VehicleType
	models []catalog.VehicleModel

	currentID    int
	hasCurrent   bool
	typesLoaded  bool
	modelsLoaded bool

	loading bool
	err     string
	search  string
}

type viewMsg viewData

// selectView builds the composite view selector.
func selectView(sel *state.Selectors) func(state.State) viewData {
	return func(s state.State) viewData {
		id, ok := s.CurrentMakeID()
		v := viewData{
			makes:      sel.FilteredMakes.Select(s),
			all:        s.Makes(),
			types:      sel.TypesForCurrentMake.Select(s),
			models:     sel.ModelsForCurrentMake(s),
			currentID:  id,
			hasCurrent: ok,
			loading:    s.Loading(),
			err:        s.Err(),
			search:     s.SearchTerm(),
		}
		if ok {
			v.typesLoaded = state.IsTypesLoaded(s, id)
			v.modelsLoaded = state.IsModelsLoaded(s, id)
		}
		return v
	}
}

// sameView reports whether two views render identically. Slices compare by
// identity, which the memoized selectors keep stable.
func sameView(a, b viewData) bool {
	return state.SameSlice(a.makes, b.makes) &&
		state.SameSlice(a.types, b.types) &&
		state.SameSlice(a.models, b.models) &&
		state.SameSlice(a.all, b.all) &&
		a.currentID == b.currentID &&
		a.hasCurrent == b.hasCurrent &&
		a.typesLoaded == b.typesLoaded &&
		a.modelsLoaded == b.modelsLoaded &&
		a.loading == b.loading &&
		a.err == b.err &&
		a.search == b.search
}

// currentName returns the display name of the current make.
func (v viewData) currentName() string {
	for _, m := range v.all {
		if m.ID == v.currentID {
			return m.Name
		}
	}
	for _, m := range v.models {
		if m.MakeName != "" {
			return m.MakeName
		}
	}
	return ""
}
