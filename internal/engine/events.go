package engine

import (
	"context"
	"fmt"
)

// Event is the progress notification handed to an external sink.
type Event struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// ProgressSink consumes progress events. Sinks must not block.
type ProgressSink func(Event)

// ProgressHook bridges engine hooks to a ProgressSink.
type ProgressHook struct {
	NopHook
	Sink ProgressSink
}

func (h ProgressHook) emit(typ, detail string) {
	if h.Sink != nil {
		h.Sink(Event{Type: typ, Detail: detail})
	}
}

func (h ProgressHook) OnTurnStart(_ context.Context, st *State) {
	h.emit("turn_start", fmt.Sprintf("turn %d", st.Turn+1))
}

func (h ProgressHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	h.emit("tool_call", describeToolCall(c))
}

func (h ProgressHook) OnToolResult(_ context.Context, _ *State, c ToolCall, _ string, err error) {
	if err != nil {
		h.emit("tool_error", fmt.Sprintf("%s: %v", c.Name, err))
		return
	}
	h.emit("tool_done", c.Name)
}

func (h ProgressHook) OnDone(_ context.Context, st *State) {
	h.emit("done", fmt.Sprintf("finished after %d turns", st.Turn))
}

func (h ProgressHook) OnTurnBudgetExhausted(_ context.Context, st *State) {
	h.emit("turn_budget_exhausted", fmt.Sprintf("stopped after %d turns", st.Turn))
}

// describeToolCall produces a human-readable summary of a tool call,
// e.g. "reading 3 files" or "applying 2 changes".
func describeToolCall(c ToolCall) string {
	switch c.Name {
	case "read_files":
		if paths, ok := c.Args["paths"].([]any); ok {
			return fmt.Sprintf("reading %d files", len(paths))
		}
		return "reading files"
	case "apply_changes":
		if files, ok := c.Args["files"].([]any); ok {
			return fmt.Sprintf("applying %d changes", len(files))
		}
		return "applying changes"
	default:
		return c.Name
	}
}
