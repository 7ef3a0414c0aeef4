package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/pkg/logs"
	pmetrics "github.com/agentdeck/agentdeck/internal/pkg/prometheus"
	"github.com/agentdeck/agentdeck/internal/provider"
)

const defaultMaxIterations = 5

var (
	// ErrEmptyConversation is returned when Run is called without any turns.
	ErrEmptyConversation = errors.New("conversation has no turns")
	// ErrNoProvider is returned when neither the primary model spec nor any
	// fallback resolves to a registered provider.
	ErrNoProvider = errors.New("no usable provider")
)

// resolveFunc maps a provider ID to a registered provider instance.
type resolveFunc func(id string) (provider.Provider, error)

/// Builder drives agent-building conversations: it streams model output,
// serves intermediate catalog lookups, and turns the terminal tool call
// into a validated AgentSpec.
type Builder struct {
	models        []string // primary first, then fallbacks
	maxIterations int
	catalog       *Catalog
	tools         []*schema.ToolInfo
	resolve       resolveFunc
}

func New(cfg config.BuilderConfig, catalog *Catalog) *Builder {
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultMaxIterations
	}

	models := make([]string, 0, 1+len(cfg.Fallback))
	if cfg.Model != "" {
		models = append(models, cfg.Model)
	}
	models = append(models, cfg.Fallback...)

	return &Builder{
		models:        models,
		maxIterations: maxIterations,
		catalog:       catalog,
		tools:         toolInfos(),
		resolve:       provider.Get,
	}
}

// Run starts one conversation and returns a stream of events. Precondition
// failures (empty conversation, no resolvable provider) are returned
// synchronously; everything after that arrives on the stream.
func (b *Builder) Run(ctx context.Context, turns []ChatTurn, systemPrompt string) (*schema.StreamReader[*Event], error) {
	if len(turns) == 0 {
		return nil, ErrEmptyConversation
	}

	p, spec, err := b.pickProvider(ctx)
	if err != nil {
		return nil, err
	}

	pmetrics.BuilderConversations.Inc()

	msgs := buildMessages(turns, systemPrompt)
	logs.CtxDebug(ctx, "[builder] starting conversation via %s, turns: %d, max_iterations: %d",
		spec.String(), len(turns), b.maxIterations)

	sr, sw := schema.Pipe[*Event](8)
	go func() {
		defer sw.Close()
		b.runLoop(ctx, sw, p, spec.ModelName, msgs)
	}()
	return sr, nil
}

// pickProvider resolves the first configured model spec whose provider is
// registered. Fallbacks are tried in order at conversation start only; a
// provider that fails mid-stream is not swapped out.
func (b *Builder) pickProvider(ctx context.Context) (provider.Provider, *provider.ModelSpec, error) {
	var lastErr error
	for _, raw := range b.models {
		spec, err := provider.ParseModelSpec(raw)
		if err != nil {
			logs.CtxWarn(ctx, "[builder] skipping model spec %q: %v", raw, err)
			lastErr = err
			continue
		}
		p, err := b.resolve(spec.ProviderID)
		if err != nil {
			logs.CtxWarn(ctx, "[builder] provider %s unavailable: %v", spec.ProviderID, err)
			lastErr = err
			continue
		}
		return p, spec, nil
	}
	if lastErr != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoProvider, lastErr)
	}
	return nil, nil, ErrNoProvider
}

func buildMessages(turns []ChatTurn, systemPrompt string) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns)+1)
	if systemPrompt != "" {
		msgs = append(msgs, &schema.Message{Role: schema.System, Content: systemPrompt})
	}
	for _, turn := range turns {
		role := schema.User
		if turn.Role == RoleAssistant {
			role = schema.Assistant
		}
		msgs = append(msgs, &schema.Message{Role: role, Content: turn.Content})
	}
	return msgs
}
