package builder

// EventKind discriminates the events a builder conversation emits.
type EventKind string

const (
	// EventTextDelta carries an incremental chunk of assistant text.
	EventTextDelta EventKind = "text_delta"
	// EventToolResult is progress narration for an intermediate tool lookup.
	EventToolResult EventKind = "tool_result"
	// EventFinalAgent carries the terminal artifact; at most one per
	// conversation, and the loop stops after emitting it.
	EventFinalAgent EventKind = "final_agent"
	// EventWarning signals the conversation ended without finishing
	// (iteration ceiling, discarded invalid spec).
	EventWarning EventKind = "warning"
	// EventError is a terminal transport or provider failure.
	EventError EventKind = "error"
)

// Event is one element of the stream returned by Builder.Run.
type Event struct {
	Kind EventKind
	Text string
	Spec *AgentSpec
}
