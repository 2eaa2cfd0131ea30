package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/mediagrid/modules/s3"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // pipeline file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Concurrency and StepTimeout override the pipeline's own settings when
	// positive.
	Concurrency int
	StepTimeout time.Duration

	// OutputDir is where the local provider writes relative destinations.
	OutputDir string
	S3        s3.Config

	GeminiAPIKey string
	GeminiModel  string

	HTTPTimeout time.Duration

	// CacheSize is the number of generated artifacts kept in memory; zero
	// disables the cache.
	CacheSize int
	CacheTTL  time.Duration

	// EventsURL, when set, publishes run events to a socket.io server.
	EventsURL       string
	EventsNamespace string
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		LogFormat:   "text",
		LogLevel:    "info",
		OutputDir:   ".",
		HTTPTimeout: 30 * time.Second,
		CacheSize:   64,
		CacheTTL:    10 * time.Minute,
	}
}

// NewConfig validates cfg and returns a normalized copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	var errs []error
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort))
	}
	if cfg.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", cfg.Concurrency))
	}
	if cfg.StepTimeout < 0 {
		errs = append(errs, fmt.Errorf("step timeout must not be negative, got %s", cfg.StepTimeout))
	}
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache size must not be negative, got %d", cfg.CacheSize))
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
