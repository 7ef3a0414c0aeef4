package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/agentdeck/agentdeck/internal/trigger"
)

// ErrSpecInvalid marks a terminal tool call whose payload does not form a
// usable agent spec. Callers must discard the payload, never repair it.
var ErrSpecInvalid = errors.New("invalid agent spec")

// Role of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one turn of the caller-supplied conversation.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AgentSpec is the terminal artifact of a builder conversation: a complete
// agent definition the dashboard can materialize.
type AgentSpec struct {
	Title        string       `json:"title"`
	Goal         string       `json:"goal"`
	Integrations []string     `json:"integrations"`
	Instructions []string     `json:"instructions"`
	Triggers     *TriggerSpec `json:"triggers,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

type TriggerSpec struct {
	API       bool           `json:"api,omitempty"`
	MCP       bool           `json:"mcp,omitempty"`
	Webhook   bool           `json:"webhook,omitempty"`
	Scheduled *ScheduledSpec `json:"scheduled,omitempty"`
}

type ScheduledSpec struct {
	Enabled     bool   `json:"enabled"`
	Cron        string `json:"cron"`
	Description string `json:"description,omitempty"`
}

// ParseAgentSpec decodes and validates the terminal tool's JSON arguments.
// The untyped payload never crosses this boundary: either a fully validated
// AgentSpec comes out, or a wrapped ErrSpecInvalid.
func ParseAgentSpec(raw string) (*AgentSpec, error) {
	var spec AgentSpec
	if err := sonic.UnmarshalString(raw, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpecInvalid, err)
	}

	if strings.TrimSpace(spec.Title) == "" {
		return nil, fmt.Errorf("%w: missing title", ErrSpecInvalid)
	}
	if strings.TrimSpace(spec.Goal) == "" {
		return nil, fmt.Errorf("%w: missing goal", ErrSpecInvalid)
	}
	if len(spec.Integrations) == 0 {
		return nil, fmt.Errorf("%w: integrations cannot be empty", ErrSpecInvalid)
	}
	if len(spec.Instructions) == 0 {
		return nil, fmt.Errorf("%w: instructions cannot be empty", ErrSpecInvalid)
	}

	if sched := spec.scheduledTrigger(); sched != nil && sched.Enabled {
		if strings.TrimSpace(sched.Cron) == "" {
			return nil, fmt.Errorf("%w: scheduled trigger enabled without a cron expression", ErrSpecInvalid)
		}
		if _, err := trigger.ValidateCron(sched.Cron); err != nil {
			return nil, fmt.Errorf("%w: scheduled trigger: %v", ErrSpecInvalid, err)
		}
	}

	return &spec, nil
}

func (s *AgentSpec) scheduledTrigger() *ScheduledSpec {
	if s.Triggers == nil {
		return nil
	}
	return s.Triggers.Scheduled
}
