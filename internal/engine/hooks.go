// engine/hooks.go
package engine

import "context"

type Hook interface {
	OnTurnStart(ctx context.Context, st *State)
	OnBeforeModel(ctx context.Context, st *State, messages []ChatMessage, toolSchemas []ToolSchema)
	OnAfterModel(ctx context.Context, st *State, resp LLMResponse)
	OnToolCall(ctx context.Context, st *State, call ToolCall)
	OnToolResult(ctx context.Context, st *State, call ToolCall, result string, err error)
	OnHistoryChanged(ctx context.Context, st *State)
	OnDone(ctx context.Context, st *State)
	OnTurnBudgetExhausted(ctx context.Context, st *State)
}

// NopHook lets you implement only the hooks you need.
type NopHook struct{}

func (NopHook) OnTurnStart(context.Context, *State)                              {}
func (NopHook) OnBeforeModel(context.Context, *State, []ChatMessage, []ToolSchema) {}
func (NopHook) OnAfterModel(context.Context, *State, LLMResponse)                {}
func (NopHook) OnToolCall(context.Context, *State, ToolCall)                     {}
func (NopHook) OnToolResult(context.Context, *State, ToolCall, string, error)    {}
func (NopHook) OnHistoryChanged(context.Context, *State)                         {}
func (NopHook) OnDone(context.Context, *State)                                   {}
func (NopHook) OnTurnBudgetExhausted(context.Context, *State)                    {}

type Hooks []Hook

func (hs Hooks) OnTurnStart(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnTurnStart(ctx, st)
	}
}
func (hs Hooks) OnBeforeModel(ctx context.Context, st *State, m []ChatMessage, schemas []ToolSchema) {
	for _, h := range hs {
		h.OnBeforeModel(ctx, st, m, schemas)
	}
}
func (hs Hooks) OnAfterModel(ctx context.Context, st *State, r LLMResponse) {
	for _, h := range hs {
		h.OnAfterModel(ctx, st, r)
	}
}
func (hs Hooks) OnToolCall(ctx context.Context, st *State, c ToolCall) {
	for _, h := range hs {
		h.OnToolCall(ctx, st, c)
	}
}
func (hs Hooks) OnToolResult(ctx context.Context, st *State, c ToolCall, s string, e error) {
	for _, h := range hs {
		h.OnToolResult(ctx, st, c, s, e)
	}
}
func (hs Hooks) OnHistoryChanged(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnHistoryChanged(ctx, st)
	}
}
func (hs Hooks) OnDone(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnDone(ctx, st)
	}
}
func (hs Hooks) OnTurnBudgetExhausted(ctx context.Context, st *State) {
	for _, h := range hs {
		h.OnTurnBudgetExhausted(ctx, st)
	}
}
