package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentdeck/agentdeck/internal/config"
)

// CatalogTool is one callable tool an integration offers.
type CatalogTool struct {
	Name        string
	Description string
}

// Catalog maps integration names to their tool inventories. It is built once
// at startup and read-only afterwards, so lookups need no locking.
type Catalog struct {
	integrations map[string][]CatalogTool // keyed by lower-cased name
	display      map[string]string        // lower-cased name -> canonical display name
}

// NewCatalog builds the catalog from the built-in integrations merged with
// any extras from config. Config entries with the same name replace the
// built-in inventory wholesale.
func NewCatalog(cfg config.CatalogConfig) *Catalog {
	c := &Catalog{
		integrations: make(map[string][]CatalogTool),
		display:      make(map[string]string),
	}
	for name, tools := range builtinIntegrations {
		c.put(name, tools)
	}
	for name, tools := range cfg.Integrations {
		converted := make([]CatalogTool, 0, len(tools))
		for _, t := range tools {
			converted = append(converted, CatalogTool{Name: t.Name, Description: t.Description})
		}
		c.put(name, converted)
	}
	return c
}

func (c *Catalog) put(name string, tools []CatalogTool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return
	}
	c.integrations[key] = tools
	c.display[key] = strings.TrimSpace(name)
}

// Lookup returns the tool inventory for an integration, case-insensitively.
func (c *Catalog) Lookup(name string) ([]CatalogTool, bool) {
	tools, ok := c.integrations[strings.ToLower(strings.TrimSpace(name))]
	return tools, ok
}

// Names returns all canonical integration names, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.display))
	for _, name := range c.display {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RenderLookup formats the inventories of the requested integrations as a
// single document for the model. Unknown names get an explicit "not found"
// line rather than being silently dropped, so the model can correct itself.
func (c *Catalog) RenderLookup(names []string) string {
	if len(names) == 0 {
		return "No integrations requested. Available: " + strings.Join(c.Names(), ", ")
	}

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString("\n")
		}
		tools, ok := c.Lookup(name)
		if !ok {
			fmt.Fprintf(&b, "## %s\nNot found. Available integrations: %s\n",
				strings.TrimSpace(name), strings.Join(c.Names(), ", "))
			continue
		}
		fmt.Fprintf(&b, "## %s\n", c.display[strings.ToLower(strings.TrimSpace(name))])
		for _, t := range tools {
			fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
		}
	}
	return b.String()
}

// builtinIntegrations ships a baseline inventory so the builder works with
// zero catalog configuration.
var builtinIntegrations = map[string][]CatalogTool{
	"Slack": {
		{Name: "slack.send_message", Description: "Send a message to a channel or user"},
		{Name: "slack.list_channels", Description: "List channels visible to the workspace bot"},
		{Name: "slack.read_history", Description: "Read recent messages from a channel"},
	},
	"GitHub": {
		{Name: "github.list_issues", Description: "List issues in a repository, filterable by state and label"},
		{Name: "github.create_issue", Description: "Open a new issue in a repository"},
		{Name: "github.get_pull_request", Description: "Fetch a pull request with its review status"},
		{Name: "github.search_code", Description: "Search code across repositories"},
	},
	"Gmail": {
		{Name: "gmail.search_messages", Description: "Search the mailbox with Gmail query syntax"},
		{Name: "gmail.send_email", Description: "Send an email from the connected account"},
		{Name: "gmail.create_draft", Description: "Create a draft without sending it"},
	},
	"Notion": {
		{Name: "notion.query_database", Description: "Query a database with filters and sorts"},
		{Name: "notion.create_page", Description: "Create a page under a parent page or database"},
		{Name: "notion.append_blocks", Description: "Append content blocks to an existing page"},
	},
	"Jira": {
		{Name: "jira.search_issues", Description: "Search issues with a JQL query"},
		{Name: "jira.create_issue", Description: "Create an issue in a project"},
		{Name: "jira.transition_issue", Description: "Move an issue through its workflow"},
	},
	"Google Calendar": {
		{Name: "gcal.list_events", Description: "List events in a time window"},
		{Name: "gcal.create_event", Description: "Create an event with attendees"},
	},
	"Linear": {
		{Name: "linear.list_issues", Description: "List issues in a team, filterable by state"},
		{Name: "linear.create_issue", Description: "Create an issue in a team"},
	},
	"Web": {
		{Name: "web.search", Description: "Search the web and return ranked results"},
		{Name: "web.fetch_page", Description: "Fetch a URL and return its readable text"},
	},
}
