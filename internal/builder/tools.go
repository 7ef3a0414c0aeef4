package builder

import (
	"github.com/cloudwego/eino/schema"
)

const (
	// ToolGenerateAgent is the terminal tool: calling it ends the
	// conversation with a final agent spec.
	ToolGenerateAgent = "generate_agent"
	// ToolFetchRelevantTools is an intermediate lookup against the
	// integration catalog; the loop continues after it.
	ToolFetchRelevantTools = "fetch_relevant_tools"
)

// toolInfos returns the tool surface exposed to the model on every
// iteration. The set is static per conversation.
func toolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolGenerateAgent,
			Desc: "Produce the final agent definition. Call this exactly once, " +
				"when the user's requirements are clear enough to write a complete agent. " +
				"Calling it ends the conversation.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"title": {
					Type:     schema.String,
					Desc:     "Short human-readable agent name",
					Required: true,
				},
				"goal": {
					Type:     schema.String,
					Desc:     "One or two sentences describing what the agent accomplishes",
					Required: true,
				},
				"integrations": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc:     "Integration names the agent needs, verified against the catalog",
					Required: true,
				},
				"instructions": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc:     "Ordered steps the agent follows on every run",
					Required: true,
				},
				"triggers": {
					Type: schema.Object,
					Desc: "How the agent is invoked",
					SubParams: map[string]*schema.ParameterInfo{
						"api":     {Type: schema.Boolean, Desc: "Expose an HTTP API trigger"},
						"mcp":     {Type: schema.Boolean, Desc: "Expose the agent as an MCP tool"},
						"webhook": {Type: schema.Boolean, Desc: "Fire on incoming webhooks"},
						"scheduled": {
							Type: schema.Object,
							Desc: "Fire on a recurring schedule",
							SubParams: map[string]*schema.ParameterInfo{
								"enabled": {Type: schema.Boolean, Required: true},
								"cron": {
									Type: schema.String,
									Desc: "Five-field cron expression (minute hour day-of-month month day-of-week)",
								},
								"description": {
									Type: schema.String,
									Desc: "Human-readable restatement of the schedule",
								},
							},
						},
					},
				},
				"notes": {
					Type: schema.String,
					Desc: "Caveats or assumptions worth surfacing to the user",
				},
			}),
		},
		{
			Name: ToolFetchRelevantTools,
			Desc: "Look up which tools the listed integrations offer. Use this before " +
				"generate_agent whenever you are unsure an integration exists or what it can do.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"integrations": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc:     "Integration names to look up, e.g. [\"Slack\", \"GitHub\"]",
					Required: true,
				},
			}),
		},
	}
}

type fetchToolsArgs struct {
	Integrations []string `json:"integrations"`
}
