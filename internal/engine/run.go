package engine

import (
	"context"
	"encoding/json"
	"fmt"
)

// Run executes the conversation loop until the model answers with plain
// text, the turn budget is exhausted, or a model call fails.
//
// Termination semantics:
//   - a turn with no tool calls ends the loop successfully; the turn's
//     text is the session's final answer,
//   - exhausting MaxTurns is a defined graceful terminal state, not an
//     error: the caller assembles whatever has accumulated,
//   - a model invocation failure aborts immediately and propagates as a
//     *ModelInvocationError; state must be considered unusable.
//
// Tool calls within a turn execute strictly in the order the model
// emitted them; the loop never schedules them concurrently.
func Run(ctx context.Context, llm LLMClient, reg ToolRegistry, st *State, hooks Hooks, opts ChatOptions) error {
	st.Turn = 0

	for st.Turn < st.MaxTurns && !st.Done {
		select {
		case <-ctx.Done():
			return fmt.Errorf("execution cancelled: %w", ctx.Err())
		default:
		}

		if err := turnOnce(ctx, llm, reg, st, hooks, opts); err != nil {
			return err
		}
		st.Turn++
	}

	if st.Done {
		hooks.OnDone(ctx, st)
	} else {
		hooks.OnTurnBudgetExhausted(ctx, st)
	}
	return nil
}

func turnOnce(ctx context.Context, llm LLMClient, reg ToolRegistry, st *State, hooks Hooks, opts ChatOptions) error {
	hooks.OnTurnStart(ctx, st)

	msgs := append([]ChatMessage(nil), st.History...)
	schemas := reg.Schemas()
	hooks.OnBeforeModel(ctx, st, msgs, schemas)

	resp, err := llm.GenerateWithTools(ctx, msgs, schemas, opts)
	if err != nil {
		return &ModelInvocationError{Model: st.Model, Turn: st.Turn, Err: err}
	}
	hooks.OnAfterModel(ctx, st, resp)

	st.Totals.Add(resp.Usage)
	if resp.Model != "" {
		st.Model = resp.Model
	}

	// Non-empty text always updates the running answer, even when the
	// turn also issues tool calls.
	st.RecordText(resp.Reply.Text)

	assistantMsg := ChatMessage{
		Role:      RoleAssistant,
		Content:   resp.Reply.Text,
		ToolCalls: resp.Reply.ToolCalls,
	}
	st.Append(assistantMsg)
	hooks.OnHistoryChanged(ctx, st)

	switch resp.Reply.Kind {
	case ReplyText:
		st.Done = true
		return nil
	case ReplyToolCalls:
		executeToolCalls(ctx, resp.Reply.ToolCalls, reg, st, hooks)
		return nil
	default:
		return fmt.Errorf("unhandled reply kind: %d", resp.Reply.Kind)
	}
}

// executeToolCalls runs each call in order and appends one tool-result
// message per call, keyed by the call ID. Tool failures never abort the
// turn: they become structured results the model sees on the next call.
func executeToolCalls(ctx context.Context, calls []ToolCall, reg ToolRegistry, st *State, hooks Hooks) {
	for _, call := range calls {
		hooks.OnToolCall(ctx, st, call)

		content, err := runTool(ctx, call, reg)
		if err != nil {
			content = toolErrorResult(err)
		}

		toolCallID := call.ID
		if toolCallID == "" {
			toolCallID = call.Name
		}
		st.Append(ChatMessage{Role: RoleTool, Name: toolCallID, Content: content})
		hooks.OnToolResult(ctx, st, call, content, err)
	}
	hooks.OnHistoryChanged(ctx, st)
}

func runTool(ctx context.Context, call ToolCall, reg ToolRegistry) (string, error) {
	t, ok := reg[call.Name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s (available tools: %v)", call.Name, reg.Names())
	}

	if err := t.ValidateArgs(call.Args); err != nil {
		return "", err
	}

	return t.Fn(ctx, call.Args)
}

// toolErrorResult serializes a tool failure so the model can read it and
// self-correct on the next turn.
func toolErrorResult(err error) string {
	payload, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(payload)
}
