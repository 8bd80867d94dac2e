// Package app is the composition root of vpick.
//
// # Overview
//
// Run loads configuration and preferences, builds the file logger, and wires
// the long-lived components:
//
//	config.Load ──> logging.New ──> newRuntime
//	                                  ├─ vpic.Client        (catalog.DataSource)
//	                                  ├─ state.Store        (reducer + subscriptions)
//	                                  ├─ state.Selectors    (shared memo caches)
//	                                  ├─ effects.Orchestrator
//	                                  └─ prometheus.Registry
//
// serve then runs three tasks in one errgroup:
//
//   - the effects loop, which turns load requests into API calls
//   - the metrics endpoint, when metrics_addr is set
//   - the UI, whose exit cancels the other two
//
// The make list is requested once the loop is listening, so the first screen
// fills in without user input.
//
// # Errors
//
// Configuration, logger and client construction failures are returned from
// Run before the terminal is taken over. Fetch failures never end the program;
// they land in the state's error field and the UI shows them.
//
// # Metrics
//
// When metrics_addr is configured the registry is served at /metrics together
// with a /healthz probe. It carries the Go and process collectors plus the
// vpick_effects_* series.
package app
