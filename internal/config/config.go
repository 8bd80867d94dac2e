package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything vpick reads at startup.
type Config struct {
	BaseURL     string        `env:"VPICK_BASE_URL"`
	Timeout     time.Duration `env:"VPICK_TIMEOUT"`
	RateLimit   float64       `env:"VPICK_RATE_LIMIT"`
	MaxRetries  int           `env:"VPICK_MAX_RETRIES"`
	LogFile     string        `env:"VPICK_LOG_FILE"`
	LogLevel    string        `env:"VPICK_LOG_LEVEL"`
	MetricsAddr string        `env:"VPICK_METRICS_ADDR"`
	MemoSize    int           `env:"VPICK_MEMO_SIZE"`
}

const (
	defaultConfigPath = "~/.config/vpick/config.toml"
	defaultBaseURL    = "https://vpic.nhtsa.dot.gov/api"
	defaultTimeout    = 10 * time.Second
	defaultRateLimit  = 5
	defaultMaxRetries = 2
	defaultLogLevel   = "info"
	defaultMemoSize   = 64
)

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		BaseURL:    defaultBaseURL,
		Timeout:    defaultTimeout,
		RateLimit:  defaultRateLimit,
		MaxRetries: defaultMaxRetries,
		LogLevel:   defaultLogLevel,
		MemoSize:   defaultMemoSize,
	}
}

// Load reads the TOML config at path (or the default location), falls back
// to defaults when it is missing, then applies VPICK_* environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := overlayFile(&cfg, resolved); err != nil {
		return Config{}, err
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL        string   `toml:"base_url"`
		TimeoutSeconds float64  `toml:"timeout_seconds"`
		RateLimit      *float64 `toml:"rate_limit"`
		MaxRetries     *int     `toml:"max_retries"`
		LogFile        string   `toml:"log_file"`
		LogLevel       string   `toml:"log_level"`
		MetricsAddr    string   `toml:"metrics_addr"`
		MemoSize       int      `toml:"memo_size"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds * float64(time.Second))
	}
	if raw.RateLimit != nil {
		cfg.RateLimit = *raw.RateLimit
	}
	if raw.MaxRetries != nil {
		cfg.MaxRetries = *raw.MaxRetries
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.MetricsAddr); v != "" {
		cfg.MetricsAddr = v
	}
	if raw.MemoSize > 0 {
		cfg.MemoSize = raw.MemoSize
	}
	return nil
}

// normalize trims values, expands the log path and rejects settings no
// component can run with.
func (c *Config) normalize() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.MetricsAddr = strings.TrimSpace(c.MetricsAddr)
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.MemoSize <= 0 {
		return fmt.Errorf("memo_size must be positive, got %d", c.MemoSize)
	}
	if strings.TrimSpace(c.LogFile) != "" {
		expanded, err := expandPath(c.LogFile)
		if err != nil {
			return fmt.Errorf("log_file: %w", err)
		}
		c.LogFile = expanded
	} else {
		c.LogFile = ""
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
