package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var defaultManager = &InstanceManager{}

type InstanceManager struct {
	path   string
	loaded bool
	cfg    *Config

	mu sync.RWMutex
}

func (ins *InstanceManager) Get() (*Config, error) {
	if ins == nil {
		return nil, fmt.Errorf("instance manager is nil")
	}

	ins.mu.RLock()
	defer ins.mu.RUnlock()

	if !ins.loaded || ins.cfg == nil {
		return nil, fmt.Errorf("config is not loaded")
	}

	return ins.cfg.Clone()
}

func (ins *InstanceManager) Load(path string) (*Config, error) {
	if ins == nil {
		return nil, fmt.Errorf("instance manager is nil")
	}

	ins.mu.Lock()
	defer ins.mu.Unlock()

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	ins.path = path
	ins.cfg = cfg
	ins.loaded = true
	return cfg.Clone()
}

func loadConfigFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func Load(path string) (*Config, error) {
	return defaultManager.Load(path)
}

func Get() (*Config, error) {
	return defaultManager.Get()
}
