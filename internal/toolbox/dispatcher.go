// Package toolbox implements the two tool operations the model may call,
// read_files and apply_changes, against a session's workspace store. The
// dispatcher owns the store and the cumulative change ledger; it performs
// no network or persistence I/O.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/stitchworks/stitch/internal/analyzer"
	"github.com/stitchworks/stitch/internal/engine"
	"github.com/stitchworks/stitch/internal/workspace"
)

// ChangedFile is one ledger entry: the final state of a path touched
// during the session.
type ChangedFile struct {
	Path     string          `json:"path"`
	Action   analyzer.Action `json:"action"`
	Content  string          `json:"content,omitempty"`
	Language string          `json:"language,omitempty"`
}

// Results is the dispatcher's cumulative outcome, merged into the
// session result by the orchestrating agent.
type Results struct {
	ChangedFiles  []ChangedFile `json:"changedFiles"`
	Summary       string        `json:"summary"`
	EnvVarsNeeded []string      `json:"envVarsNeeded"`
}

// Dispatcher executes tool calls against its owned workspace store and
// maintains the last-write-wins ledger across a session's turns.
type Dispatcher struct {
	mu        sync.Mutex
	store     *workspace.Store
	ledger    map[string]ChangedFile
	summaries []string
	envVars   map[string]bool
}

// NewDispatcher creates a dispatcher over the given store. The store is
// owned by the dispatcher for the session's lifetime.
func NewDispatcher(store *workspace.Store) *Dispatcher {
	return &Dispatcher{
		store:   store,
		ledger:  make(map[string]ChangedFile),
		envVars: make(map[string]bool),
	}
}

// Registry returns the tool registry declaring exactly the two
// operations this dispatcher serves.
func (d *Dispatcher) Registry() engine.ToolRegistry {
	return engine.ToolRegistry{
		"read_files":    newReadFilesTool(d),
		"apply_changes": newApplyChangesTool(d),
	}
}

// Execute runs a named tool directly. Unknown names and malformed
// arguments become structured error results, never Go errors: the model
// reads them and self-corrects.
func (d *Dispatcher) Execute(ctx context.Context, name string, args map[string]any) string {
	reg := d.Registry()
	t, ok := reg[name]
	if !ok {
		return errorResult(fmt.Sprintf("unknown tool: %s", name))
	}
	result, err := t.Fn(ctx, args)
	if err != nil {
		return errorResult(err.Error())
	}
	return result
}

// Manifest returns the sorted path list re-derived from the live store.
func (d *Dispatcher) Manifest() []string {
	return d.store.Manifest()
}

// Results assembles the ledger into the session outcome: changed files
// deduplicated by path with the last write winning, summaries joined in
// order, env vars as a sorted set.
func (d *Dispatcher) Results() Results {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := make([]ChangedFile, 0, len(d.ledger))
	for _, f := range d.ledger {
		changed = append(changed, f)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].Path < changed[j].Path })

	vars := make([]string, 0, len(d.envVars))
	for v := range d.envVars {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	return Results{
		ChangedFiles:  changed,
		Summary:       strings.Join(d.summaries, "; "),
		EnvVarsNeeded: vars,
	}
}

// errorResult serializes a structured tool error payload.
func errorResult(msg string) string {
	payload, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, msg)
	}
	return string(payload)
}
