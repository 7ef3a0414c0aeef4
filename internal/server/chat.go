package server

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/http1/resp"

	"github.com/agentdeck/agentdeck/internal/builder"
	"github.com/agentdeck/agentdeck/internal/pkg/logs"
)

// builderSystemPrompt frames the conversation for the model. The catalog
// contents are fetched on demand via fetch_relevant_tools, not inlined here.
const builderSystemPrompt = `You are an assistant that helps users design automation agents for their dashboard.
Ask clarifying questions when the request is vague. Before committing to an
integration, verify it with fetch_relevant_tools. When the requirements are
clear, call generate_agent exactly once with the complete definition; that
call ends the conversation.`

type chatRequest struct {
	Messages []builder.ChatTurn `json:"messages"`
	Context  map[string]any     `json:"context,omitempty"`
}

// sseFrame is one data: payload on the chat stream.
type sseFrame struct {
	Type    string             `json:"type"`
	Content string             `json:"content,omitempty"`
	Tool    string             `json:"tool,omitempty"`
	Data    *builder.AgentSpec `json:"data,omitempty"`
}

func (s *Server) handleChat(ctx context.Context, c *app.RequestContext) {
	ctx = logs.SetLogID(ctx, logs.NewLogID())

	var req chatRequest
	if err := sonic.Unmarshal(c.GetRequest().Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(consts.StatusBadRequest, utils.H{"error": "messages cannot be empty"})
		return
	}

	timeout := time.Duration(s.cfg.Server.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	events, err := s.builder.Run(runCtx, req.Messages, builderSystemPrompt)
	if err != nil {
		if errors.Is(err, builder.ErrEmptyConversation) {
			c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		// Missing provider credential or any other startup failure.
		logs.CtxError(ctx, "[server] chat run failed: %v", err)
		c.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
		return
	}
	// Closing the reader tells the loop to abandon in-flight provider calls.
	defer events.Close()

	c.SetStatusCode(consts.StatusOK)
	c.Response.Header.Set("Content-Type", "text/event-stream; charset=utf-8")
	c.Response.Header.Set("Cache-Control", "no-cache")
	c.Response.HijackWriter(resp.NewChunkedBodyWriter(&c.Response, c.GetWriter()))

	streamEvents(ctx, c, events)
}

// sseStream is the subset of the request context the frame pump needs; tests
// substitute a buffer-backed implementation.
type sseStream interface {
	io.Writer
	Flush() error
}

// streamEvents forwards loop events to the client as SSE frames until the
// event stream ends or the client goes away.
func streamEvents(ctx context.Context, w sseStream, events *schema.StreamReader[*builder.Event]) {
	for {
		ev, recvErr := events.Recv()
		if recvErr != nil {
			if !errors.Is(recvErr, io.EOF) {
				logs.CtxWarn(ctx, "[server] event stream error: %v", recvErr)
			}
			return
		}

		frame, ok := frameFor(ev)
		if !ok {
			continue
		}
		if writeErr := writeFrame(w, frame); writeErr != nil {
			logs.CtxDebug(ctx, "[server] client disconnected: %v", writeErr)
			return
		}
	}
}

// frameFor maps an internal loop event onto the wire format. Warnings and
// errors travel as plain text frames; intermediate tool lookups stay
// server-side.
func frameFor(ev *builder.Event) (sseFrame, bool) {
	switch ev.Kind {
	case builder.EventTextDelta, builder.EventWarning, builder.EventError:
		return sseFrame{Type: "text", Content: ev.Text}, true
	case builder.EventFinalAgent:
		return sseFrame{Type: "tool_call", Tool: builder.ToolGenerateAgent, Data: ev.Spec}, true
	default:
		return sseFrame{}, false
	}
}

func writeFrame(w sseStream, frame sseFrame) error {
	payload, err := sonic.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		return err
	}
	return w.Flush()
}
