package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration loading.
var (
	ErrMissingAccount = errors.New("config: account is required")
	ErrMissingAppID   = errors.New("config: app_id is required")
	ErrMissingSecret  = errors.New("config: secret is required")
)

// Config is the on-disk client configuration.
type Config struct {
	// Account is the base URL of the remote service.
	Account string `yaml:"account"`

	// AppID identifies the application to the service.
	AppID string `yaml:"app_id"`

	// Secret is the shared signing secret. Usually an environment
	// reference such as ${KASSA_SECRET}.
	Secret string `yaml:"secret"`

	// Timeout bounds each HTTP request. Zero means the client default.
	Timeout time.Duration `yaml:"timeout"`

	// CachePath overrides where issued tokens are stored between runs.
	CachePath string `yaml:"cache_path"`

	Logging struct {
		Level string `yaml:"level"` // debug|info|warn|error|critical
	} `yaml:"logging"`

	Metrics struct {
		Exporter string `yaml:"exporter"` // otlp|prometheus|stdout|none
	} `yaml:"metrics"`

	Tracing struct {
		Exporter  string  `yaml:"exporter"` // otlp|stdout|none
		SamplePct float64 `yaml:"sample_pct"`
	} `yaml:"tracing"`
}

// Load reads, expands, and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Expand environment references in values that may carry credentials
	// or machine-specific paths.
	for _, field := range []*string{&cfg.Account, &cfg.AppID, &cfg.Secret, &cfg.CachePath} {
		expanded, err := ExpandEnvStrict(*field)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		*field = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the required fields.
func (c *Config) Validate() error {
	if c.Account == "" {
		return ErrMissingAccount
	}
	if c.AppID == "" {
		return ErrMissingAppID
	}
	if c.Secret == "" {
		return ErrMissingSecret
	}
	return nil
}
