package openai

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/gg/gconv"
)

type Config struct {
	ID           string
	APIKey       string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

func (c *Config) Validate() error {
	if c.ID == "" {
		return errors.New("provider ID cannot be empty")
	}
	if c.APIKey == "" {
		return errors.New("API key cannot be empty")
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "gpt-4o"
	}
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
	return nil
}

func ParseConfig(id string, configMap map[string]any) (*Config, error) {
	cfg := &Config{ID: id}

	cfg.APIKey = gconv.To[string](configMap["api_key"])
	if cfg.APIKey == "" {
		return nil, errors.New("openai api_key is required")
	}

	cfg.BaseURL = gconv.To[string](configMap["base_url"])
	cfg.DefaultModel = gconv.To[string](configMap["default_model"])
	if timeout := gconv.To[int](configMap["timeout"]); timeout > 0 {
		cfg.Timeout = time.Duration(timeout) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid openai config: %w", err)
	}
	return cfg, nil
}
