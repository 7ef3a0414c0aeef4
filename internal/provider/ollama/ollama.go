package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bytedance/gg/gconv"
	ollamamodel "github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	ollamaapi "github.com/eino-contrib/ollama/api"

	"github.com/agentdeck/agentdeck/internal/pkg/logs"
	"github.com/agentdeck/agentdeck/internal/provider"
)

var _ provider.Provider = (*Provider)(nil)

type Config struct {
	ID           string
	BaseURL      string
	DefaultModel string
	Timeout      time.Duration
}

func ParseConfig(id string, configMap map[string]any) (*Config, error) {
	cfg := &Config{ID: id}
	if cfg.ID == "" {
		return nil, errors.New("provider ID cannot be empty")
	}

	cfg.BaseURL = gconv.To[string](configMap["base_url"])
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:11434"
	}
	cfg.DefaultModel = gconv.To[string](configMap["default_model"])
	if cfg.DefaultModel == "" {
		return nil, errors.New("ollama default_model is required")
	}
	cfg.Timeout = 120 * time.Second
	if timeout := gconv.To[int](configMap["timeout"]); timeout > 0 {
		cfg.Timeout = time.Duration(timeout) * time.Second
	}
	return cfg, nil
}

type Provider struct {
	config    Config
	modelMap  map[string]*ollamamodel.ChatModel
	modelsCli *ollamaapi.Client
	mu        sync.RWMutex
}

func NewProvider(ctx context.Context, id string, cfgMap map[string]any) (*Provider, error) {
	cfg, err := ParseConfig(id, cfgMap)
	if err != nil {
		return nil, fmt.Errorf("parse ollama config: %w", err)
	}

	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	p := &Provider{
		config:    *cfg,
		modelMap:  make(map[string]*ollamamodel.ChatModel, 4),
		modelsCli: ollamaapi.NewClient(baseURL, &http.Client{Timeout: cfg.Timeout}),
	}

	// Reachability check only; a cold ollama daemon is not a hard failure.
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := p.modelsCli.List(checkCtx); err != nil {
		logs.CtxWarn(ctx, "[ollama:%s] daemon not reachable at %s: %v", id, cfg.BaseURL, err)
	}

	return p, nil
}

func (p *Provider) ID() string {
	return p.config.ID
}

func (p *Provider) Type() provider.Type {
	return provider.Ollama
}

func (p *Provider) Close() error {
	return nil
}

func (p *Provider) Generate(ctx context.Context, modelName string, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if modelName == "" {
		modelName = p.config.DefaultModel
	}
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	chatModel, err := p.getOrCreateModel(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat model for %s: %w", modelName, err)
	}
	resp, err := chatModel.Generate(ctx, input, opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama API call failed: %w", err)
	}
	return resp, nil
}

func (p *Provider) Stream(ctx context.Context, modelName string, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if modelName == "" {
		modelName = p.config.DefaultModel
	}

	chatModel, err := p.getOrCreateModel(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat model for %s: %w", modelName, err)
	}
	streamReader, err := chatModel.Stream(ctx, input, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}
	return streamReader, nil
}

func (p *Provider) getOrCreateModel(ctx context.Context, modelName string) (*ollamamodel.ChatModel, error) {
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

	chatModel, err := ollamamodel.NewChatModel(ctx, &ollamamodel.ChatModelConfig{
		BaseURL: p.config.BaseURL,
		Timeout: p.config.Timeout,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model for %s: %w", modelName, err)
	}
	p.modelMap[modelName] = chatModel
	return chatModel, nil
}
