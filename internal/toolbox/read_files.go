package toolbox

import (
	"context"
	"encoding/json"

	"github.com/stitchworks/stitch/internal/engine"
)

// maxReadPaths bounds one read_files call; excess paths are silently
// truncated to keep the next prompt from ballooning.
const maxReadPaths = 10

const readFilesSchema = `{
  "type": "object",
  "properties": {
    "paths": {
      "type": "array",
      "items": {"type": "string"},
      "description": "Project-relative paths to read, at most 10 per call"
    }
  },
  "required": ["paths"]
}`

func newReadFilesTool(d *Dispatcher) engine.Tool {
	return engine.Tool{
		Name:        "read_files",
		Description: "Read the current content of up to 10 project files. Returns a mapping of path to content; absent paths map to null.",
		SchemaJSON:  readFilesSchema,
		Fn: func(_ context.Context, args map[string]any) (string, error) {
			return d.readFiles(args), nil
		},
	}
}

func (d *Dispatcher) readFiles(args map[string]any) string {
	raw, ok := args["paths"]
	if !ok {
		return errorResult("read_files requires a 'paths' list")
	}
	list, ok := raw.([]any)
	if !ok {
		return errorResult("'paths' must be a list of strings")
	}
	if len(list) == 0 {
		return errorResult("'paths' must not be empty")
	}
	if len(list) > maxReadPaths {
		list = list[:maxReadPaths]
	}

	contents := make(map[string]*string, len(list))
	for _, entry := range list {
		path, ok := entry.(string)
		if !ok {
			return errorResult("'paths' must be a list of strings")
		}
		if f, found := d.store.Get(path); found {
			content := f.Content
			contents[path] = &content
		} else {
			contents[path] = nil
		}
	}

	payload, err := json.Marshal(contents)
	if err != nil {
		return errorResult("failed to serialize file contents: " + err.Error())
	}
	return string(payload)
}
