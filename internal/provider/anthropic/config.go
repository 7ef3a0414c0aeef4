package anthropic

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
	MaxTokens    int
	Timeout      time.Duration
}

func (c *Config) Validate() error {
	if c.ID == "" {
		return errors.New("provider ID cannot be empty")
	}
	if c.APIKey == "" {
		return errors.New("API key cannot be empty")
	}
	if c.DefaultModel == "" {
		c.DefaultModel = "claude-3-5-sonnet-20241022"
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 4096
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
		return nil, errors.New("anthropic api_key is required")
	}

	cfg.BaseURL = gconv.To[string](configMap["base_url"])
	cfg.DefaultModel = gconv.To[string](configMap["default_model"])
	if maxTokens := gconv.To[int](configMap["max_tokens"]); maxTokens > 0 {
		cfg.MaxTokens = maxTokens
	}
	if timeout := gconv.To[int](configMap["timeout"]); timeout > 0 {
		cfg.Timeout = time.Duration(timeout) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid anthropic config: %w", err)
	}
	return cfg, nil
}
