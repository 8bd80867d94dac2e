// Package state holds the catalog cache for vpick and is the only place it
// changes.
//
// # Overview
//
// The package is a small action/reducer store. Callers never modify a State;
// they dispatch an Action, the Store runs the pure Reduce function and the
// result replaces the current snapshot. Everything else in the program reads
// snapshots or derived views of them.
//
//	UI / app                 Store                       effects
//	┌──────────────┐        ┌─────────────────┐         ┌───────────────┐
//	│ Dispatch(a)  │──────→ │ Reduce(s, a)    │         │               │
//	│              │        │ current = next  │         │               │
//	│              │        │ listeners(a) ───┼───────→ │ FIFO queue    │
//	│ Watch(sel)   │ ←──────┼ subscribers     │ ←───────┼ Dispatch(...) │
//	└──────────────┘        └─────────────────┘         └───────────────┘
//
// # State
//
// State carries:
//
//   - the make list
//   - vehicle types per make, replaced whole on every successful fetch
//   - every cached vehicle model, with replace-by-key merge semantics
//   - the loaded-key sets for types and models
//   - the current make, loading flag, last error and search term
//
// The per-make map and the loaded-key sets are persistent HAMTs from
// github.com/benbjohnson/immutable. Adding a key costs O(log n) and shares
// structure with the previous snapshot instead of copying the whole set.
//
// A key is in a loaded set only after its fetch succeeded. Failures set the
// error and clear loading but never mark the key, so the next request for
// that key fetches again.
//
// # Dispatch
//
// Dispatch is synchronous. Before it returns:
//
//  1. per-make loads are validated (non-positive keys are rejected with a
//     *catalog.ValidationError and nothing else happens)
//  2. Reduce produces the next state
//  3. listeners see the action
//  4. every active Watch receives the new state
//
// A dispatch lock spans these steps, so all observers see actions in the
// order they were dispatched. Listeners run under that lock and must only
// enqueue work.
//
// # Selectors
//
// Selectors are plain functions of a State (FilterMakes, IsTypesLoaded,
// TypesForCurrentMake, ModelsForMake). Selectors wraps the costly ones with
// an explicit last-input/last-output memo keyed by slice identity, which is
// sound because snapshots never modify slices in place. ModelsForMake is
// memoized per key in a bounded LRU (hashicorp/golang-lru/v2).
//
// Many observers can share one Selectors value; unrelated state changes
// return the cached view without refiltering.
//
// # Watch
//
// Watch returns an iter.Seq that is lazy and restartable: each range loop
// subscribes, yields the current derived value immediately, and afterwards
// yields only when the derived value changes. Every state is queued for the
// subscriber, so a slow consumer sees each distinct value in order.
//
//	for makes := range state.Watch(ctx, store, sel.FilteredMakes.Select, state.SameSlice) {
//		render(makes)
//	}
//
// # Lifecycle
//
// NewStore is called once by the composition root. Close rejects further
// dispatches and ends all watches. There is no package-level state.
package state
