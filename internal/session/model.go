// Package session defines the editing session's outcome and the
// persistence collaborator that consumes it. Nothing here is used by the
// loop itself: a session that aborts persists nothing.
package session

import (
	"time"

	"github.com/stitchworks/stitch/internal/engine"
	"github.com/stitchworks/stitch/internal/toolbox"
)

// Result is the assembled outcome of one editing session, handed to the
// persistence and transcript collaborators.
type Result struct {
	ChangedFiles  []toolbox.ChangedFile `json:"changedFiles"`
	Summary       string                `json:"summary"`
	EnvVarsNeeded []string              `json:"envVarsNeeded"`
	AgentResponse string                `json:"agentResponse"`
	TokenUsage    engine.Usage          `json:"tokenUsage"`
	TurnCount     int                   `json:"turnCount"`
}

// Record is a persisted session: its result plus identity and timing.
type Record struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Request   string    `json:"request"`
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
