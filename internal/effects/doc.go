// Package effects performs the network side of catalog loads.
//
// # Overview
//
// The Orchestrator listens to a state.Store. Every applied action is copied,
// together with the state it produced, into an unbounded FIFO queue that a
// single decision goroutine drains:
//
//	Dispatch ──► Store ──► listener ──► queue ──► Run (decide)
//	                ▲                                │
//	                │                                ▼
//	                └──── Succeeded / Failed ◄── fetch goroutine
//
// # Decisions
//
//   - LoadMakes always starts a fetch.
//   - LoadTypesForMake and LoadModelsForMake start a fetch only when the key is
//     neither loaded in the state the action produced nor already being
//     fetched. Skipped requests are counted by reason ("cached", "inflight").
//   - A terminal action, or the fetch goroutine's completion when nothing was
//     dispatched, releases the key.
//
// The terminal action always carries the key that was requested, so a result
// that arrives after the user moved on is stored under the right make.
//
// # Errors
//
// Network failures become *Failed actions whose Err is the error text, or a
// fixed message when the error has none. A *catalog.ValidationError from the
// DataSource is logged and produces no action.
//
// # Metrics
//
//	vpick_effects_fetches_total{kind,outcome}
//	vpick_effects_dedup_total{kind,reason}
//	vpick_effects_inflight{kind}
//
// # Shutdown
//
// Run returns after its context is done and every outstanding fetch has
// finished. Fetches use a context detached from cancellation, so their
// results are still dispatched unless the store has been closed. A wait on
// outstanding fetches is logged at info level with its count and duration.
package effects
