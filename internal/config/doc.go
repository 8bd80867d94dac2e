// Package config loads vpick's startup configuration and user preferences.
//
// # Configuration Discovery
//
// Load resolves values in this order, later steps winning:
//
//  1. Built-in defaults (Default)
//  2. The TOML file at the given path, or ~/.config/vpick/config.toml
//  3. VPICK_* environment variables
//
// A missing file is not an error. A file that exists but does not parse is.
//
// # Default Values
//
//   - base_url: https://vpic.nhtsa.dot.gov/api
//   - timeout_seconds: 10
//   - rate_limit: 5 requests per second (0 disables throttling)
//   - max_retries: 2
//   - log_file: empty (logging disabled; the terminal belongs to the UI)
//   - log_level: info
//   - metrics_addr: empty (no /metrics endpoint)
//   - memo_size: 64
//
// # Environment
//
//	VPICK_BASE_URL      VPICK_TIMEOUT (Go duration, e.g. "5s")
//	VPICK_RATE_LIMIT    VPICK_MAX_RETRIES
//	VPICK_LOG_FILE      VPICK_LOG_LEVEL
//	VPICK_METRICS_ADDR  VPICK_MEMO_SIZE
//
// # TOML Format
//
//	base_url = "https://vpic.nhtsa.dot.gov/api"
//	timeout_seconds = 10
//	rate_limit = 5
//	max_retries = 2
//	log_file = "~/.local/state/vpick/vpick.log"
//	log_level = "info"
//	metrics_addr = "127.0.0.1:9464"
//	memo_size = 64
//
// # Preferences
//
// Prefs live separately in ~/.config/vpick/prefs.toml because the UI
// rewrites them (theme cycling). LoadPrefs never fails: any problem yields
// the defaults.
package config
