package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/agentdeck/agentdeck/internal/pkg/logs"
	pmetrics "github.com/agentdeck/agentdeck/internal/pkg/prometheus"
	"github.com/agentdeck/agentdeck/internal/pkg/utils"
	"github.com/agentdeck/agentdeck/internal/provider"
)

const iterationWarning = "I wasn't able to finish building the agent within the " +
	"allowed number of steps. Try narrowing the request or splitting it in two."

// errConsumerGone means the event stream reader closed; the loop stops
// silently since nobody is listening.
var errConsumerGone = errors.New("event consumer closed the stream")

func (b *Builder) runLoop(ctx context.Context, sw *schema.StreamWriter[*Event], p provider.Provider, modelName string, msgs []*schema.Message) {
	opts := []model.Option{
		model.WithTools(b.tools),
		model.WithToolChoice(schema.ToolChoiceAllowed),
	}

	for iter := 0; iter < b.maxIterations; iter++ {
		pmetrics.BuilderIterations.Inc()

		mr, err := p.Stream(ctx, modelName, msgs, opts...)
		if err != nil {
			logs.CtxWarn(ctx, "[builder:%d] provider stream failed: %v", iter, err)
			sw.Send(&Event{Kind: EventError, Text: "Error: " + err.Error()}, nil)
			return
		}

		full, err := b.drainModelStream(sw, mr)
		if err != nil {
			if errors.Is(err, errConsumerGone) {
				logs.CtxDebug(ctx, "[builder:%d] consumer gone, abandoning conversation", iter)
				return
			}
			logs.CtxWarn(ctx, "[builder:%d] model stream failed: %v", iter, err)
			sw.Send(&Event{Kind: EventError, Text: "Error: " + err.Error()}, nil)
			return
		}

		if len(full.ToolCalls) == 0 {
			// Natural stop: the model chose to keep talking to the user.
			logs.CtxDebug(ctx, "[builder:%d] natural stop: %s", iter, utils.Truncate80(full.Content))
			return
		}

		// Terminal tool wins over any sibling calls in the same message.
		if call := findTerminalCall(full.ToolCalls); call != nil {
			b.finish(ctx, sw, iter, call)
			return
		}

		msgs = append(msgs, full)
		for i := range full.ToolCalls {
			msgs = append(msgs, b.executeToolCall(ctx, sw, &full.ToolCalls[i]))
		}
	}

	logs.CtxWarn(ctx, "[builder] iteration limit (%d) reached without a terminal tool call", b.maxIterations)
	pmetrics.BuilderWarnings.Inc()
	sw.Send(&Event{Kind: EventWarning, Text: iterationWarning}, nil)
}

// drainModelStream forwards text chunks as delta events and concatenates the
// chunks into the complete assistant message.
func (b *Builder) drainModelStream(sw *schema.StreamWriter[*Event], mr *schema.StreamReader[*schema.Message]) (*schema.Message, error) {
	defer mr.Close()

	var chunks []*schema.Message
	for {
		chunk, err := mr.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if chunk.Content != "" {
			if closed := sw.Send(&Event{Kind: EventTextDelta, Text: chunk.Content}, nil); closed {
				return nil, errConsumerGone
			}
		}
		chunks = append(chunks, chunk)
	}

	if len(chunks) == 0 {
		return &schema.Message{Role: schema.Assistant}, nil
	}
	full, err := schema.ConcatMessages(chunks)
	if err != nil {
		return nil, fmt.Errorf("concat stream chunks: %w", err)
	}
	return full, nil
}

// finish validates the terminal payload and emits either the final agent or
// a warning. Invalid payloads are discarded whole, never patched up.
func (b *Builder) finish(ctx context.Context, sw *schema.StreamWriter[*Event], iter int, call *schema.ToolCall) {
	spec, err := ParseAgentSpec(call.Function.Arguments)
	if err != nil {
		logs.CtxWarn(ctx, "[builder:%d] terminal payload rejected: %v", iter, err)
		pmetrics.BuilderWarnings.Inc()
		sw.Send(&Event{
			Kind: EventWarning,
			Text: "The generated agent definition was incomplete and has been discarded. Please rephrase your request.",
		}, nil)
		return
	}

	logs.CtxInfo(ctx, "[builder:%d] final agent %q (%d integrations)", iter, spec.Title, len(spec.Integrations))
	pmetrics.BuilderFinalSpecs.Inc()
	sw.Send(&Event{Kind: EventFinalAgent, Spec: spec}, nil)
}

func findTerminalCall(calls []schema.ToolCall) *schema.ToolCall {
	for i := range calls {
		if calls[i].Function.Name == ToolGenerateAgent {
			return &calls[i]
		}
	}
	return nil
}

// executeToolCall runs one intermediate tool and returns its result message.
// Failures become error text for the model rather than ending the loop.
func (b *Builder) executeToolCall(ctx context.Context, sw *schema.StreamWriter[*Event], call *schema.ToolCall) *schema.Message {
	res := &schema.Message{
		Role:       schema.Tool,
		ToolCallID: call.ID,
		ToolName:   call.Function.Name,
	}

	switch call.Function.Name {
	case ToolFetchRelevantTools:
		var args fetchToolsArgs
		if err := sonic.UnmarshalString(call.Function.Arguments, &args); err != nil {
			logs.CtxWarn(ctx, "[builder] bad %s arguments: %v", call.Function.Name, err)
			res.Content = "ERROR: invalid arguments: " + err.Error()
			return res
		}
		res.Content = b.catalog.RenderLookup(args.Integrations)
		sw.Send(&Event{
			Kind: EventToolResult,
			Text: "Looked up tools for: " + strings.Join(args.Integrations, ", "),
		}, nil)
	default:
		logs.CtxWarn(ctx, "[builder] model requested unknown tool %q", call.Function.Name)
		res.Content = "ERROR: unknown tool: " + call.Function.Name
	}
	return res
}
