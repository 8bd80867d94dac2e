// Package ui provides the terminal browser for the vehicle catalog.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. It never reads the store directly from
// Update or View. A background goroutine ranges over state.Watch with a
// composite selector built from the shared memoized selectors and forwards
// each distinct value to the program as a viewMsg. Key handling turns user
// intent into actions and sends them through Store.Dispatch; the effects
// orchestrator does the fetching.
//
// # Package Structure
//
//   - app.go: Model, Update and key handling, Run
//   - viewmodel.go: the composite view selector and its equality
//   - render.go: header, makes list, detail viewport and status bar
//   - help.go: keyboard shortcut overlay
//   - keys.go: key bindings
//   - theme.go, style_helpers.go: color themes and background-aware styling
//
// # Screens
//
//   - Makes: filterable list of every make
//   - Detail: vehicle types and models of the current make
//
// # Key Bindings
//
//   - /: Search makes (filters as you type)
//   - enter: Open make (loads its types and models)
//   - esc: Back, or clear the search term
//   - j/k, g/G, ctrl+d/ctrl+u: Navigate
//   - r: Reload makes
//   - c / m / x: Clear types, models, or all per-make caches
//   - T: Cycle theme
//   - h or ?: Toggle help
//   - e or Ctrl+C: Exit
//
// # Usage Example
//
//	err := ui.Run(ctx, ui.Options{
//		Store:     store,
//		Selectors: selectors,
//		ThemeName: prefs.Theme,
//	})
package ui
