package scriptgen

type EventType string

const (
	EventToolCall    EventType = "tool_call"
	EventToolResult  EventType = "tool_result"
	EventStatus      EventType = "status"
	EventFinalOutput EventType = "final_output"
	EventError       EventType = "error"
)

// AgentStreamEvent is one frame of the advanced-research stream. Only the
// fields belonging to Type are populated.
type AgentStreamEvent struct {
	Type       EventType `json:"type"`
	ToolName   string    `json:"tool_name,omitempty"`
	ToolInput  any       `json:"tool_input,omitempty"`
	ToolOutput any       `json:"tool_output,omitempty"`
	Message    string    `json:"message,omitempty"`
	Output     any       `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// EmitFunc receives pipeline events. A nil EmitFunc is allowed everywhere.
type EmitFunc func(AgentStreamEvent)

func (f EmitFunc) emit(ev AgentStreamEvent) {
	if f != nil {
		f(ev)
	}
}

func StatusEvent(msg string) AgentStreamEvent {
	return AgentStreamEvent{Type: EventStatus, Message: msg}
}

func ToolCallEvent(name string, input any) AgentStreamEvent {
	return AgentStreamEvent{Type: EventToolCall, ToolName: name, ToolInput: input}
}

func ToolResultEvent(name string, output any) AgentStreamEvent {
	return AgentStreamEvent{Type: EventToolResult, ToolName: name, ToolOutput: output}
}

func FinalOutputEvent(output any) AgentStreamEvent {
	return AgentStreamEvent{Type: EventFinalOutput, Output: output}
}

func ErrorEvent(err error) AgentStreamEvent {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return AgentStreamEvent{Type: EventError, Error: msg}
}
