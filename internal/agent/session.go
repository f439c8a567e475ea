// Package agent wires the editing session together: system prompt, tool
// dispatcher and conversation loop over one in-memory project snapshot.
package agent

import (
	"context"
	"fmt"

	"github.com/stitchworks/stitch/internal/engine"
	"github.com/stitchworks/stitch/internal/prompts"
	"github.com/stitchworks/stitch/internal/session"
	"github.com/stitchworks/stitch/internal/toolbox"
	"github.com/stitchworks/stitch/internal/workspace"
)

// DefaultMaxTurns bounds a session when the caller does not choose a
// budget of its own.
const DefaultMaxTurns = 12

// Config holds the per-session knobs.
type Config struct {
	MaxTurns        int     // Hard turn ceiling; 0 means DefaultMaxTurns
	Temperature     float32 // Forwarded to the provider
	MaxOutputTokens int     // Forwarded to the provider
}

// Session is one bounded editing exchange over an owned project
// snapshot. Sessions are single-use: build one per request.
type Session struct {
	llm        engine.LLMClient
	dispatcher *toolbox.Dispatcher
	hooks      engine.Hooks
	cfg        Config
}

// NewSession builds a session over its own copy of the snapshot. The
// workspace store and ledger are owned by this session; concurrent
// sessions never share state.
func NewSession(llm engine.LLMClient, snapshot []workspace.FileRecord, cfg Config, hooks ...engine.Hook) *Session {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	store := workspace.NewStore(snapshot)
	return &Session{
		llm:        llm,
		dispatcher: toolbox.NewDispatcher(store),
		hooks:      engine.Hooks(hooks),
		cfg:        cfg,
	}
}

// Run drives the bounded exchange for one change request. projectContext
// is optional free text folded into the system prompt.
//
// On a model invocation failure the error propagates and no result is
// returned; in-memory state is discarded with the session, so re-running
// from the persisted snapshot is always safe.
func (s *Session) Run(ctx context.Context, request, projectContext string) (*session.Result, error) {
	systemPrompt, err := prompts.BuildSystemPrompt(s.dispatcher.Manifest(), projectContext)
	if err != nil {
		return nil, fmt.Errorf("failed to build system prompt: %w", err)
	}

	st := &engine.State{MaxTurns: s.cfg.MaxTurns}
	st.Append(engine.ChatMessage{Role: engine.RoleSystem, Content: systemPrompt})
	st.Append(engine.ChatMessage{Role: engine.RoleUser, Content: request})

	opts := engine.ChatOptions{
		Temperature:     s.cfg.Temperature,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
	}
	if err := engine.Run(ctx, s.llm, s.dispatcher.Registry(), st, s.hooks, opts); err != nil {
		return nil, err
	}

	results := s.dispatcher.Results()
	return &session.Result{
		ChangedFiles:  results.ChangedFiles,
		Summary:       results.Summary,
		EnvVarsNeeded: results.EnvVarsNeeded,
		AgentResponse: st.AgentResponse,
		TokenUsage:    st.Totals,
		TurnCount:     st.Turn,
	}, nil
}

// Manifest exposes the live file manifest, mainly for callers that want
// to display it.
func (s *Session) Manifest() []string {
	return s.dispatcher.Manifest()
}
