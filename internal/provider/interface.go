package provider

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type Provider interface {
	// ID returns the configured provider instance identifier.
	// The value is used as the lookup key in the provider registry.
	ID() string

	// Type returns the backend family of this provider instance
	// (openai, anthropic, or ollama).
	Type() Type

	// Close releases provider-owned resources such as clients.
	// It should be safe to call during shutdown.
	Close() error

	// Generate performs a single non-streaming chat completion request.
	// modelName is the target backend model identifier; if empty,
	// implementations fall back to their configured default model.
	Generate(context.Context, string, []*schema.Message, ...model.Option) (*schema.Message, error)

	// Stream performs a streaming chat completion request.
	// The parameters follow the same contract as Generate.
	Stream(context.Context, string, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error)
}
