package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Duration decodes TOML duration strings like "3s" or "30m". go-toml does
// not convert strings to time.Duration on its own, so config fields use this
// wrapper and callers convert with Std().
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	NSE         NSEConfig      `toml:"nse"`
	Storage     StorageConfig  `toml:"storage"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Logging     LoggingConfig  `toml:"logging"`
}

// NSEConfig configures the resilient session client.
type NSEConfig struct {
	BaseURL            string   `toml:"base_url" validate:"required,url"`
	MinRequestInterval Duration `toml:"min_request_interval"` // minimum gap between upstream requests
	SessionLifetime    Duration `toml:"session_lifetime"`     // forward expiry set at session init
	RequestTimeout     Duration `toml:"request_timeout"`
	MaxRetries         int      `toml:"max_retries" validate:"gte=0"`
	ErrorThreshold     int      `toml:"error_threshold" validate:"gt=0"` // consecutive errors forcing re-auth
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// PipelineConfig controls the ingestion pass cadence and window.
type PipelineConfig struct {
	Schedule     string `toml:"schedule"`                       // cron schedule for periodic passes
	LookbackDays int    `toml:"lookback_days" validate:"gt=0"` // announcement window per pass
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05.000"
}

// DefaultConfig returns the baseline configuration before file and
// environment overrides are applied.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		NSE: NSEConfig{
			BaseURL:            "https://www.nseindia.com",
			MinRequestInterval: Duration(3 * time.Second),
			SessionLifetime:    Duration(30 * time.Minute),
			RequestTimeout:     Duration(45 * time.Second),
			MaxRetries:         3,
			ErrorThreshold:     5,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/quartermaster",
			},
		},
		Pipeline: PipelineConfig{
			Schedule:     "0 */2 * * *",
			LookbackDays: 7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration with precedence:
// defaults -> file1 -> file2 -> ... -> environment variables.
// Later files override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("QUARTERMASTER_NSE_BASE_URL"); v != "" {
		config.NSE.BaseURL = v
	}
	if v := os.Getenv("QUARTERMASTER_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("QUARTERMASTER_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("QUARTERMASTER_LOOKBACK_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			config.Pipeline.LookbackDays = days
		}
	}
}
