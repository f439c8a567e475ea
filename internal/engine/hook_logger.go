// engine/hook_logger.go
package engine

import (
	"context"
	"log"
)

type LoggerHook struct {
	NopHook
	L *log.Logger
}

func (h LoggerHook) OnTurnStart(_ context.Context, st *State) {
	h.L.Printf("turn=%d history=%d", st.Turn, len(st.History))
}
func (h LoggerHook) OnAfterModel(_ context.Context, st *State, r LLMResponse) {
	h.L.Printf("finish=%s tokens: input=%d output=%d (cumulative=%d)",
		r.FinishReason, r.Usage.Input, r.Usage.Output, st.Totals.Total())
}
func (h LoggerHook) OnToolCall(_ context.Context, _ *State, c ToolCall) {
	h.L.Printf("tool → %s args=%v", c.Name, c.Args)
}
func (h LoggerHook) OnToolResult(_ context.Context, _ *State, c ToolCall, result string, err error) {
	if err != nil {
		h.L.Printf("tool %s error: %v", c.Name, err)
		return
	}
	preview := result
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	h.L.Printf("tool %s done: %s", c.Name, preview)
}
func (h LoggerHook) OnDone(_ context.Context, st *State) {
	h.L.Printf("done after %d turns, tokens total=%d", st.Turn, st.Totals.Total())
}
func (h LoggerHook) OnTurnBudgetExhausted(_ context.Context, st *State) {
	h.L.Printf("turn budget exhausted at %d turns", st.Turn)
}
