package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"

	"github.com/agentdeck/agentdeck/internal/builder"
	"github.com/agentdeck/agentdeck/internal/config"
	"github.com/agentdeck/agentdeck/internal/provider"
	"github.com/agentdeck/agentdeck/internal/trigger"
)

// stubProvider replays canned chunk sequences, one per Stream call.
type stubProvider struct {
	id    string
	turns [][]*schema.Message
	calls int
}

func (p *stubProvider) ID() string          { return p.id }
func (p *stubProvider) Type() provider.Type { return provider.OpenAI }
func (p *stubProvider) Close() error        { return nil }

func (p *stubProvider) Generate(context.Context, string, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return nil, errors.New("generate is not used by the chat endpoint")
}

func (p *stubProvider) Stream(_ context.Context, _ string, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if p.calls >= len(p.turns) {
		return nil, fmt.Errorf("unscripted provider call #%d", p.calls+1)
	}
	chunks := p.turns[p.calls]
	p.calls++

	sr, sw := schema.Pipe[*schema.Message](len(chunks))
	for _, chunk := range chunks {
		sw.Send(chunk, nil)
	}
	sw.Close()
	return sr, nil
}

func newChatServer(t *testing.T, modelSpec string) *Server {
	t.Helper()
	cfg := config.Config{
		Server:  config.ServerConfig{Bind: "127.0.0.1:0", RequestTimeout: 5},
		Builder: config.BuilderConfig{Model: modelSpec, MaxIterations: 5},
	}
	b := builder.New(cfg.Builder, builder.NewCatalog(config.CatalogConfig{}))
	store := trigger.NewStore(filepath.Join(t.TempDir(), "triggers.json"))
	return New(cfg, b, store)
}

func postChat(t *testing.T, s *Server, body string) *protocol.Response {
	t.Helper()
	w := ut.PerformRequest(s.httpServer.Engine, "POST", "/api/chat",
		&ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	return w.Result()
}

func TestHandleChat_InvalidBody(t *testing.T) {
	s := newChatServer(t, "ghost:model")
	resp := postChat(t, s, "not json")

	if resp.StatusCode() != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode())
	}
	if !strings.Contains(string(resp.Body()), "invalid request body") {
		t.Errorf("body = %s", resp.Body())
	}
}

func TestHandleChat_EmptyMessages(t *testing.T) {
	s := newChatServer(t, "ghost:model")
	resp := postChat(t, s, `{"messages":[]}`)

	if resp.StatusCode() != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode())
	}
	if !strings.Contains(string(resp.Body()), "messages cannot be empty") {
		t.Errorf("body = %s", resp.Body())
	}
}

func TestHandleChat_NoProvider(t *testing.T) {
	s := newChatServer(t, "ghost:model") // never registered
	resp := postChat(t, s, `{"messages":[{"role":"user","content":"make a slack agent"}]}`)

	if resp.StatusCode() != 500 {
		t.Fatalf("status = %d, want 500", resp.StatusCode())
	}
	if !strings.Contains(string(resp.Body()), "provider") {
		t.Errorf("body = %s", resp.Body())
	}
}

// recordingStream captures SSE output in place of the hijacked connection.
type recordingStream struct {
	bytes.Buffer
	flushes int
}

func (r *recordingStream) Flush() error {
	r.flushes++
	return nil
}

func TestStreamEvents_Frames(t *testing.T) {
	args := `{"title":"Slack Poster","goal":"Post weekly","integrations":["Slack"],"instructions":["Post message"]}`
	stub := &stubProvider{
		id: "sse-stub",
		turns: [][]*schema.Message{{
			{Role: schema.Assistant, Content: "Working on it"},
			{Role: schema.Assistant, ToolCalls: []schema.ToolCall{
				{ID: "call-1", Type: "function", Function: schema.FunctionCall{
					Name: builder.ToolGenerateAgent, Arguments: args,
				}},
			}},
		}},
	}
	if err := provider.Register(stub); err != nil {
		t.Fatalf("register stub provider: %v", err)
	}

	b := builder.New(config.BuilderConfig{Model: "sse-stub:test-model", MaxIterations: 5},
		builder.NewCatalog(config.CatalogConfig{}))
	events, err := b.Run(context.Background(),
		[]builder.ChatTurn{{Role: builder.RoleUser, Content: "make a slack agent"}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer events.Close()

	rec := &recordingStream{}
	streamEvents(context.Background(), rec, events)
	out := rec.String()

	if !strings.Contains(out, `data: {"type":"text","content":"Working on it"}`) {
		t.Errorf("missing text frame:\n%s", out)
	}
	if !strings.Contains(out, `"type":"tool_call"`) || !strings.Contains(out, `"tool":"generate_agent"`) {
		t.Errorf("missing terminal tool_call frame:\n%s", out)
	}
	if !strings.Contains(out, `"title":"Slack Poster"`) {
		t.Errorf("frame missing the agent spec:\n%s", out)
	}
	if !strings.HasSuffix(out, "\n\n") {
		t.Errorf("frames must be newline-delimited:\n%q", out)
	}
	if rec.flushes != 2 {
		t.Errorf("flushes = %d, want one per frame (2)", rec.flushes)
	}
}
