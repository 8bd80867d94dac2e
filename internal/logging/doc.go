// Package logging builds the zap logger shared by every vpick component.
//
// The terminal belongs to the UI, so logs only ever go to a file as JSON
// lines. An empty path disables logging entirely.
//
// Each package receives a child logger named after its component:
//
//	logger, cleanup, err := logging.New(cfg.LogFile, cfg.LogLevel)
//	defer cleanup()
//	storeLog := logging.Component(logger, logging.ComponentStore)
package logging
