package engine

import (
	"context"
	"reflect"
	"testing"
)

func TestProgressHookEventSequence(t *testing.T) {
	llm := &scriptedClient{replies: []LLMResponse{
		toolReply("", ToolCall{ID: "c1", Name: "echo", Args: map[string]any{"msg": "hi"}}),
		textReply("done"),
	}}

	var events []Event
	hooks := Hooks{ProgressHook{Sink: func(ev Event) { events = append(events, ev) }}}
	st := &State{MaxTurns: 5}

	if err := Run(context.Background(), llm, echoRegistry(), st, hooks, ChatOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []Event{
		{Type: "turn_start", Detail: "turn 1"},
		{Type: "tool_call", Detail: "echo"},
		{Type: "tool_done", Detail: "echo"},
		{Type: "turn_start", Detail: "turn 2"},
		{Type: "done", Detail: "finished after 2 turns"},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %+v, want %+v", events, want)
	}
}

func TestProgressHookToolError(t *testing.T) {
	llm := &scriptedClient{replies: []LLMResponse{
		toolReply("", ToolCall{ID: "c1", Name: "nope", Args: map[string]any{}}),
		textReply("done"),
	}}

	var events []Event
	hooks := Hooks{ProgressHook{Sink: func(ev Event) { events = append(events, ev) }}}
	st := &State{MaxTurns: 5}

	if err := Run(context.Background(), llm, echoRegistry(), st, hooks, ChatOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var sawError bool
	for _, ev := range events {
		if ev.Type == "tool_error" {
			sawError = true
		}
		if ev.Type == "tool_done" {
			t.Errorf("unexpected tool_done event: %+v", ev)
		}
	}
	if !sawError {
		t.Errorf("no tool_error event in %+v", events)
	}
}

func TestProgressHookBudgetExhausted(t *testing.T) {
	llm := &scriptedClient{replies: []LLMResponse{
		toolReply("", ToolCall{ID: "c1", Name: "echo", Args: map[string]any{"msg": "a"}}),
		toolReply("", ToolCall{ID: "c2", Name: "echo", Args: map[string]any{"msg": "b"}}),
	}}

	var events []Event
	hooks := Hooks{ProgressHook{Sink: func(ev Event) { events = append(events, ev) }}}
	st := &State{MaxTurns: 2}

	if err := Run(context.Background(), llm, echoRegistry(), st, hooks, ChatOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	last := events[len(events)-1]
	want := Event{Type: "turn_budget_exhausted", Detail: "stopped after 2 turns"}
	if last != want {
		t.Errorf("last event = %+v, want %+v", last, want)
	}
}

func TestDescribeToolCall(t *testing.T) {
	tests := []struct {
		name string
		call ToolCall
		want string
	}{
		{
			name: "read with paths",
			call: ToolCall{Name: "read_files", Args: map[string]any{"paths": []any{"a.js", "b.js", "c.js"}}},
			want: "reading 3 files",
		},
		{
			name: "read without paths",
			call: ToolCall{Name: "read_files", Args: map[string]any{}},
			want: "reading files",
		},
		{
			name: "apply with files",
			call: ToolCall{Name: "apply_changes", Args: map[string]any{"files": []any{map[string]any{}, map[string]any{}}}},
			want: "applying 2 changes",
		},
		{
			name: "apply without files",
			call: ToolCall{Name: "apply_changes", Args: map[string]any{}},
			want: "applying changes",
		},
		{
			name: "other tool",
			call: ToolCall{Name: "echo", Args: map[string]any{}},
			want: "echo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeToolCall(tt.call); got != tt.want {
				t.Errorf("describeToolCall() = %q, want %q", got, tt.want)
			}
		})
	}
}
