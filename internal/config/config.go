// Package config loads service configuration from the environment, with
// an optional YAML file for non-secret settings.
//
// Secrets (provider and tracing API keys) come only from the environment.
// The tracing key is optional: its absence disables tracing and nothing
// else.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mattheweller/vibesana/internal/errors"
)

// Environment variable names.
const (
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvOpikAPIKey   = "OPIK_API_KEY"
	EnvListenAddr   = "VIBESANA_ADDR"
	EnvLogLevel     = "VIBESANA_LOG_LEVEL"
	EnvLogFormat    = "VIBESANA_LOG_FORMAT"
	EnvDBPath       = "VIBESANA_DB_PATH"
	EnvTraceURL     = "VIBESANA_TRACE_ENDPOINT"
)

// Config holds the full service configuration.
type Config struct {
	// Server settings
	ListenAddr      string        `yaml:"listen_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`

	// Provider settings
	OpenAIAPIKey   string        `yaml:"-"`
	OpenAIBaseURL  string        `yaml:"openai_base_url"`
	Model          string        `yaml:"model"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// Tracing settings. Tracing is enabled iff OpikAPIKey is set.
	OpikAPIKey    string `yaml:"-"`
	TraceEndpoint string `yaml:"trace_endpoint"`

	// Storage settings
	DBPath string `yaml:"db_path"`

	// Logging settings
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		ListenAddr:      "0.0.0.0:8080",
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    90 * time.Second,
		IdleTimeout:     60 * time.Second,
		OpenAIBaseURL:   "https://api.openai.com/v1",
		Model:           "gpt-4o-mini",
		RequestTimeout:  60 * time.Second,
		TraceEndpoint:   "www.comet.com",
		DBPath:          "vibesana.db",
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("read config file: %s", path), err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeConfigUnmarshal,
				fmt.Sprintf("parse config file: %s", path), err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvOpenAIAPIKey); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv(EnvOpikAPIKey); v != "" {
		c.OpikAPIKey = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvTraceURL); v != "" {
		c.TraceEndpoint = v
	}
}

// Validate checks configuration invariants. A missing provider key is
// deliberately not an error here: startup succeeds and readiness reports
// the gap instead.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.NewConfigInvalidError("listen address must not be empty")
	}
	if c.Model == "" {
		return errors.NewConfigInvalidError("model must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.NewConfigInvalidError("request timeout must be positive")
	}
	return nil
}

// TracingEnabled reports whether a tracing credential is configured.
func (c Config) TracingEnabled() bool {
	return c.OpikAPIKey != ""
}
