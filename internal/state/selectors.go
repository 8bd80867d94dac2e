package state

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/five82/vpick/internal/catalog"
)

// FilterMakes returns the makes whose name contains term, ignoring case and
// keeping input order. An empty term returns makes itself.
func FilterMakes(makes []catalog.Make, term string) []catalog.Make {
	if term == "" {
		return makes
	}
	out := make([]catalog.Make, 0, len(makes))
	for _, m := range makes {
		if catalog.MatchesName(m.Name, term) {
			out = append(out, m)
		}
	}
	return out
}

// IsTypesLoaded reports whether a types fetch for makeID has completed.
func IsTypesLoaded(s State, makeID int) bool {
	return s.loadedTypes.Has(makeID)
}

// IsModelsLoaded reports whether a models fetch for makeID has completed.
func IsModelsLoaded(s State, makeID int) bool {
	return s.loadedModels.Has(makeID)
}

// TypesForCurrentMake returns the types slot of the current make, or nil.
func TypesForCurrentMake(s State) []catalog.VehicleType {
	id, ok := s.CurrentMakeID()
	if !ok {
		return nil
	}
	types, _ := s.TypesFor(id)
	return types
}

// ModelsForMake returns the models owned by makeID.
func ModelsForMake(models []catalog.VehicleModel, makeID int) []catalog.VehicleModel {
	var out []catalog.VehicleModel
	for _, m := range models {
		if m.MakeID == makeID {
			out = append(out, m)
		}
	}
	return out
}

// SameSlice reports whether a and b are the same slice value: equal length
// and, when non-empty, the same first element. Snapshots never modify slices
// in place, so identity implies equal contents.
func SameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

// sliceID is a comparable identity for a slice.
type sliceID[T any] struct {
	head *T
	n    int
}

func idOf[T any](s []T) sliceID[T] {
	if len(s) == 0 {
		return sliceID[T]{}
	}
	return sliceID[T]{head: &s[0], n: len(s)}
}

// Memo caches the last output of compute keyed by the identity of its input
// slice. A repeated Select with an unchanged key returns the cached value.
type Memo[K comparable, V any] struct {
	key     func(State) K
	compute func(State) V

	mu       sync.Mutex
	valid    bool
	lastKey  K
	last     V
	computed atomic.Int64
}

// NewMemo builds a memoized selector.
func NewMemo[K comparable, V any](key func(State) K, compute func(State) V) *Memo[K, V] {
	return &Memo[K, V]{key: key, compute: compute}
}

// Select returns the derived value for s.
func (m *Memo[K, V]) Select(s State) V {
	k := m.key(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.lastKey == k {
		return m.last
	}
	m.last = m.compute(s)
	m.lastKey = k
	m.valid = true
	m.computed.Add(1)
	return m.last
}

// Computations returns how many times compute has run.
func (m *Memo[K, V]) Computations() int64 {
	return m.computed.Load()
}

// ModelsByMake memoizes ModelsForMake per key in a bounded LRU.
type ModelsByMake struct {
	cache    *lru.Cache[int, modelsEntry]
	computed atomic.Int64
}

type modelsEntry struct {
	in  sliceID[catalog.VehicleModel]
	out []catalog.VehicleModel
}

// NewModelsByMake returns a per-key memo holding at most size makes.
func NewModelsByMake(size int) (*ModelsByMake, error) {
	cache, err := lru.New[int, modelsEntry](size)
	if err != nil {
		return nil, fmt.Errorf("models memo: %w", err)
	}
	return &ModelsByMake{cache: cache}, nil
}

// Select returns the models owned by makeID in s. The returned slice only
// changes when that make's own models do, so loading another make leaves it
// identical.
func (m *ModelsByMake) Select(s State, makeID int) []catalog.VehicleModel {
	in := idOf(s.modelsAll)
	e, ok := m.cache.Get(makeID)
	if ok && e.in == in {
		return e.out
	}
	out := ModelsForMake(s.modelsAll, makeID)
	m.computed.Add(1)
	if ok && slices.Equal(out, e.out) {
		out = e.out
	}
	m.cache.Add(makeID, modelsEntry{in: in, out: out})
	return out
}

// Computations returns how many times the filter has run.
func (m *ModelsByMake) Computations() int64 {
	return m.computed.Load()
}

type filterKey struct {
	makes sliceID[catalog.Make]
	term  string
}

type currentTypesKey struct {
	makeID int
	has    bool
	slot   sliceID[catalog.VehicleType]
}

// Selectors bundles the memoized views shared by every observer of a store.
type Selectors struct {
	FilteredMakes       *Memo[filterKey, []catalog.Make]
	TypesForCurrentMake *Memo[currentTypesKey, []catalog.VehicleType]
	ModelsForMake       *ModelsByMake
}

const defaultMemoSize = 64

// NewSelectors builds the memoized selectors. memoSize bounds the per-key
// models cache; zero or negative uses the default.
func NewSelectors(memoSize int) (*Selectors, error) {
	if memoSize <= 0 {
		memoSize = defaultMemoSize
	}
	models, err := NewModelsByMake(memoSize)
	if err != nil {
		return nil, err
	}
	return &Selectors{
		FilteredMakes: NewMemo(
			func(s State) filterKey { return filterKey{makes: idOf(s.makes), term: s.searchTerm} },
			func(s State) []catalog.Make { return FilterMakes(s.makes, s.searchTerm) },
		),
		TypesForCurrentMake: NewMemo(
			func(s State) currentTypesKey {
				id, ok := s.CurrentMakeID()
				types, _ := s.TypesFor(id)
				return currentTypesKey{makeID: id, has: ok, slot: idOf(types)}
			},
			TypesForCurrentMake,
		),
		ModelsForMake: models,
	}, nil
}

// ModelsForCurrentMake returns the models of the current make, or nil.
func (sel *Selectors) ModelsForCurrentMake(s State) []catalog.VehicleModel {
	id, ok := s.CurrentMakeID()
	if !ok {
		return nil
	}
	return sel.ModelsForMake.Select(s, id)
}
