package config

import (
	"fmt"

	"github.com/bytedance/sonic"
)

type (
	Config struct {
		Server    ServerConfig              `yaml:"server"`
		Logging   LoggingConfig             `yaml:"logging"`
		Builder   BuilderConfig             `yaml:"builder"`
		Scheduler SchedulerConfig           `yaml:"scheduler"`
		Providers map[string]ProviderConfig `yaml:"providers"`
		Catalog   CatalogConfig             `yaml:"catalog"`
	}

	ServerConfig struct {
		Bind string `yaml:"bind"`
		// RequestTimeout bounds one chat conversation end to end, in seconds.
		RequestTimeout int `yaml:"request_timeout"`
	}

	LoggingConfig struct {
		Level      string `yaml:"level"`  // debug, info, warn, error
		Format     string `yaml:"format"` // json, text
		Output     string `yaml:"output"` // stdout, file, both
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // MB
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
	}

	BuilderConfig struct {
		// Model is a "provider_id:model_name" spec, e.g. "openai:gpt-4o".
		Model string `yaml:"model"`
		// Fallback models tried in order when the primary provider fails.
		Fallback      []string `yaml:"fallback"`
		MaxIterations int      `yaml:"max_iterations"`
	}

	SchedulerConfig struct {
		Enabled            *bool  `yaml:"enabled"`
		Store              string `yaml:"store"`
		TickSec            int    `yaml:"tick_sec"`
		MaxConcurrentFires int    `yaml:"max_concurrent_fires"`
		FireTimeoutSec     int    `yaml:"fire_timeout_sec"`
		// DefaultTimezone is applied to triggers created without one.
		DefaultTimezone string `yaml:"default_timezone"`
	}

	ProviderConfig struct {
		ID     string         `yaml:"-"`
		Type   string         `yaml:"type"` // openai, anthropic, ollama
		Config map[string]any `yaml:"config"`
	}

	// CatalogConfig lets deployments extend the built-in integration catalog.
	CatalogConfig struct {
		Integrations map[string][]CatalogToolConfig `yaml:"integrations"`
	}

	CatalogToolConfig struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	}
)

// Clone returns a deep copy via a JSON round trip.
func (c *Config) Clone() (*Config, error) {
	if c == nil {
		return nil, fmt.Errorf("config is nil")
	}

	raw, err := sonic.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	var cloned Config
	if err := sonic.Unmarshal(raw, &cloned); err != nil {
		return nil, fmt.Errorf("unmarshal config clone: %w", err)
	}

	return &cloned, nil
}
