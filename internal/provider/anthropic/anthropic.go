package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/agentdeck/agentdeck/internal/provider"
)

var _ provider.Provider = (*Provider)(nil)

type Provider struct {
	config   Config
	modelMap map[string]*claude.ChatModel
	mu       sync.RWMutex
}

func NewProvider(_ context.Context, id string, cfgMap map[string]any) (*Provider, error) {
	cfg, err := ParseConfig(id, cfgMap)
	if err != nil {
		return nil, fmt.Errorf("parse anthropic config: %w", err)
	}

	return &Provider{
		config:   *cfg,
		modelMap: make(map[string]*claude.ChatModel, 4),
	}, nil
}

func (p *Provider) ID() string {
	return p.config.ID
}

func (p *Provider) Type() provider.Type {
	return provider.Anthropic
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) Generate(ctx context.Context, modelName string, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if modelName == "" {
		modelName = p.config.DefaultModel
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	chatModel, err := p.getOrCreateModel(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat model for %s: %w", modelName, err)
	}

	sanitizeMessages(messages)

	resp, err := chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}
	return resp, nil
}

func (p *Provider) Stream(ctx context.Context, modelName string, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if modelName == "" {
		modelName = p.config.DefaultModel
	}

	chatModel, err := p.getOrCreateModel(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat model for %s: %w", modelName, err)
	}

	sanitizeMessages(messages)

	streamReader, err := chatModel.Stream(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	return streamReader, nil
}

// sanitizeMessages ensures no message has completely empty content, which would
// cause a panic in the upstream eino-ext Claude SDK when MessageParam.Content
// is empty.
func sanitizeMessages(msgs []*schema.Message) {
	for _, m := range msgs {
		if m.Content != "" || len(m.ToolCalls) > 0 {
			continue
		}
		if m.Role == schema.Tool {
			m.Content = "{}"
		} else {
			m.Content = "..."
		}
	}
}

func (p *Provider) getOrCreateModel(ctx context.Context, modelName string) (*claude.ChatModel, error) {
	p.mu.RLock()
	if m, exists := p.modelMap[modelName]; exists {
		p.mu.RUnlock()
		return m, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if m, exists := p.modelMap[modelName]; exists {
		return m, nil
	}

	baseURL := strings.TrimSpace(p.config.BaseURL)
	var baseURLPtr *string
	if baseURL != "" {
		baseURLPtr = &baseURL
	}

	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    p.config.APIKey,
		BaseURL:   baseURLPtr,
		Model:     modelName,
		MaxTokens: p.config.MaxTokens,
		HTTPClient: &http.Client{
			Timeout: p.config.Timeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model for %s: %w", modelName, err)
	}

	p.modelMap[modelName] = chatModel
	return chatModel, nil
}
