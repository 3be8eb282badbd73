// Package config loads and validates the fieldkit service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Common errors
var (
	ErrConfigurationError   = errors.New("configuration error")
	ErrMissingRequiredField = errors.New("missing required field")
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr" json:"addr,omitempty"`
}

// SetDefaults sets default values for server configuration.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level,omitempty"`

	// Environment selects encoder defaults ("development" or "production").
	Environment string `yaml:"environment" json:"environment,omitempty"`
}

// SetDefaults sets default values for logging configuration.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
}

// Build constructs a zap logger from the configuration.
func (c LoggingConfig) Build() (*zap.Logger, error) {
	var cfg zap.Config
	if c.Environment == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(c.Level))

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// EsignConfig contains e-signature provider configuration.
type EsignConfig struct {
	// BaseURL is the provider API base URL.
	BaseURL string `yaml:"base-url" json:"base_url"`

	// APIKey is the provider API key.
	APIKey string `yaml:"api-key" json:"api_key,omitempty"`

	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `yaml:"timeout" json:"timeout,omitempty"`

	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int `yaml:"max-retries" json:"max_retries,omitempty"`
}

// Validate validates the provider configuration.
func (c *EsignConfig) Validate() error {
	if c.BaseURL == "" {
		return NewConfigError("esign.base-url", "required field is missing")
	}
	return nil
}

// Timeout returns the configured timeout as a duration.
func (c *EsignConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ArchiveConfig contains envelope archive configuration.
type ArchiveConfig struct {
	// Path is the SQLite database path. ":memory:" keeps the archive
	// ephemeral.
	Path string `yaml:"path" json:"path,omitempty"`
}

// SetDefaults sets default values for archive configuration.
func (c *ArchiveConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "fieldkit-envelopes.db"
	}
}

// AppConfig contains the complete application configuration.
type AppConfig struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server" json:"server,omitempty"`

	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging" json:"logging,omitempty"`

	// Esign contains e-signature provider configuration.
	Esign EsignConfig `yaml:"esign" json:"esign"`

	// Archive contains envelope archive configuration.
	Archive ArchiveConfig `yaml:"archive" json:"archive,omitempty"`
}

// SetDefaults sets defaults on all sections.
func (c *AppConfig) SetDefaults() {
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	c.Archive.SetDefaults()
}

// Validate validates the complete configuration.
func (c *AppConfig) Validate() error {
	return c.Esign.Validate()
}

// LoadAppConfig loads the complete application configuration from a file.
func LoadAppConfig(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig parses configuration from YAML data.
func ParseAppConfig(data []byte) (*AppConfig, error) {
	var config AppConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
