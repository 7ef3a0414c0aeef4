package builder

import (
	"strings"
	"testing"

	"github.com/agentdeck/agentdeck/internal/config"
)

func TestCatalog_LookupCaseInsensitive(t *testing.T) {
	c := NewCatalog(config.CatalogConfig{})

	for _, name := range []string{"Slack", "slack", "SLACK", " slack "} {
		tools, ok := c.Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q) not found", name)
			continue
		}
		if len(tools) == 0 {
			t.Errorf("Lookup(%q) returned no tools", name)
		}
	}

	if _, ok := c.Lookup("Teleporter"); ok {
		t.Error("Lookup(Teleporter) should not be found")
	}
}

func TestCatalog_RenderLookup(t *testing.T) {
	c := NewCatalog(config.CatalogConfig{})

	out := c.RenderLookup([]string{"slack", "Teleporter"})
	if !strings.Contains(out, "## Slack") {
		t.Errorf("missing Slack section:\n%s", out)
	}
	if !strings.Contains(out, "slack.send_message") {
		t.Errorf("missing Slack tool listing:\n%s", out)
	}
	if !strings.Contains(out, "## Teleporter\nNot found") {
		t.Errorf("missing not-found line for unknown integration:\n%s", out)
	}
}

func TestCatalog_RenderLookup_Empty(t *testing.T) {
	c := NewCatalog(config.CatalogConfig{})
	out := c.RenderLookup(nil)
	if !strings.Contains(out, "Available:") {
		t.Errorf("empty lookup should list available integrations:\n%s", out)
	}
}

func TestCatalog_ConfigOverride(t *testing.T) {
	cfg := config.CatalogConfig{
		Integrations: map[string][]config.CatalogToolConfig{
			"Slack": {{Name: "slack.custom_tool", Description: "replacement inventory"}},
			"PagerDuty": {
				{Name: "pagerduty.trigger_incident", Description: "Open an incident"},
			},
		},
	}
	c := NewCatalog(cfg)

	slack, ok := c.Lookup("slack")
	if !ok || len(slack) != 1 || slack[0].Name != "slack.custom_tool" {
		t.Errorf("config should replace built-in Slack inventory, got %+v", slack)
	}
	if _, ok := c.Lookup("pagerduty"); !ok {
		t.Error("config-added integration missing")
	}
}
