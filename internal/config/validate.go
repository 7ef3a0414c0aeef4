package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentdeck/agentdeck/internal/consts"
)

// Validate normalizes the config in place and applies defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config cannot be nil")
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		c.Server.Bind = "0.0.0.0:8080"
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 60
	}

	if c.Builder.MaxIterations <= 0 {
		c.Builder.MaxIterations = 5
	}
	c.Builder.Model = strings.TrimSpace(c.Builder.Model)

	if c.Scheduler.Enabled == nil {
		enabled := true
		c.Scheduler.Enabled = &enabled
	}
	if c.Scheduler.TickSec <= 0 {
		c.Scheduler.TickSec = 15
	}
	if c.Scheduler.MaxConcurrentFires <= 0 {
		c.Scheduler.MaxConcurrentFires = 4
	}
	if c.Scheduler.FireTimeoutSec <= 0 {
		c.Scheduler.FireTimeoutSec = 120
	}
	c.Scheduler.Store = strings.TrimSpace(c.Scheduler.Store)
	if c.Scheduler.Store == "" {
		c.Scheduler.Store = consts.DefaultTriggerStorePath()
	}
	c.Scheduler.DefaultTimezone = strings.TrimSpace(c.Scheduler.DefaultTimezone)
	if c.Scheduler.DefaultTimezone == "" {
		c.Scheduler.DefaultTimezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Scheduler.DefaultTimezone); err != nil {
		return fmt.Errorf("scheduler.default_timezone %q: %w", c.Scheduler.DefaultTimezone, err)
	}

	normalizedProviders := make(map[string]ProviderConfig, len(c.Providers))
	for key, one := range c.Providers {
		providerID := strings.TrimSpace(key)
		if providerID == "" {
			return errors.New("provider id cannot be empty")
		}
		if strings.TrimSpace(one.Type) == "" {
			return fmt.Errorf("providers[%s]: type is required", providerID)
		}
		one.ID = providerID
		normalizedProviders[providerID] = one
	}
	c.Providers = normalizedProviders

	for name, tools := range c.Catalog.Integrations {
		if strings.TrimSpace(name) == "" {
			return errors.New("catalog integration name cannot be empty")
		}
		for _, t := range tools {
			if strings.TrimSpace(t.Name) == "" {
				return fmt.Errorf("catalog integration %q has a tool without a name", name)
			}
		}
	}

	return nil
}
