package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stitchworks/stitch/internal/analyzer"
	"github.com/stitchworks/stitch/internal/engine"
	"github.com/stitchworks/stitch/internal/workspace"
)

// scriptedClient replays a fixed response sequence and records what it
// was sent, so tests can assert on the conversation the loop built.
type scriptedClient struct {
	replies  []engine.LLMResponse
	err      error
	errAt    int
	calls    int
	lastMsgs []engine.ChatMessage
}

func (c *scriptedClient) GenerateWithTools(_ context.Context, msgs []engine.ChatMessage, _ []engine.ToolSchema, _ engine.ChatOptions) (engine.LLMResponse, error) {
	c.calls++
	c.lastMsgs = msgs
	if c.errAt != 0 && c.calls == c.errAt {
		return engine.LLMResponse{}, c.err
	}
	if c.calls > len(c.replies) {
		return engine.LLMResponse{}, fmt.Errorf("scripted client exhausted after %d calls", len(c.replies))
	}
	return c.replies[c.calls-1], nil
}

func text(s string) engine.LLMResponse {
	return engine.LLMResponse{
		Reply: engine.ModelReply{Kind: engine.ReplyText, Text: s},
		Usage: engine.Usage{Input: 100, Output: 20},
		Model: "test-model",
	}
}

func tools(commentary string, calls ...engine.ToolCall) engine.LLMResponse {
	return engine.LLMResponse{
		Reply: engine.ModelReply{Kind: engine.ReplyToolCalls, Text: commentary, ToolCalls: calls},
		Usage: engine.Usage{Input: 100, Output: 20},
		Model: "test-model",
	}
}

func snapshot() []workspace.FileRecord {
	return []workspace.FileRecord{
		{Path: "src/App.jsx", Language: "javascript",
			Content: "export default function App() {\n  return <div>hello</div>;\n}\n"},
		{Path: "package.json", Language: "json", Content: `{"name": "demo"}`},
	}
}

func TestSessionReadThenAnswer(t *testing.T) {
	llm := &scriptedClient{replies: []engine.LLMResponse{
		tools("", engine.ToolCall{
			ID: "c1", Name: "read_files",
			Args: map[string]any{"paths": []any{"src/App.jsx"}},
		}),
		text("App renders a div saying hello."),
	}}

	sess := NewSession(llm, snapshot(), Config{})
	result, err := sess.Run(context.Background(), "what does the app do?", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.AgentResponse != "App renders a div saying hello." {
		t.Errorf("AgentResponse = %q", result.AgentResponse)
	}
	if result.TurnCount != 2 {
		t.Errorf("TurnCount = %d, want 2", result.TurnCount)
	}
	if len(result.ChangedFiles) != 0 {
		t.Errorf("read-only session reported %d changed files", len(result.ChangedFiles))
	}
	if result.TokenUsage.Input != 200 || result.TokenUsage.Output != 40 {
		t.Errorf("TokenUsage = %+v", result.TokenUsage)
	}

	// The replayed history must contain the read result keyed by call ID.
	var sawToolResult bool
	for _, msg := range llm.lastMsgs {
		if msg.Role == engine.RoleTool && msg.Name == "c1" {
			sawToolResult = true
			if !strings.Contains(msg.Content, "hello") {
				t.Errorf("tool result does not contain file content: %q", msg.Content)
			}
		}
	}
	if !sawToolResult {
		t.Error("tool result message never reached the model")
	}
}

func TestSessionEditRepairAnswer(t *testing.T) {
	// Read, apply a broken file, repair it after seeing the validation
	// findings, answer. Two ledger writes to the same path collapse into
	// one changed file with the later content.
	llm := &scriptedClient{replies: []engine.LLMResponse{
		tools("", engine.ToolCall{
			ID: "c0", Name: "read_files",
			Args: map[string]any{"paths": []any{"src/App.jsx"}},
		}),
		tools("adding the banner", engine.ToolCall{
			ID: "c1", Name: "apply_changes",
			Args: map[string]any{
				"files": []any{map[string]any{
					"path": "src/Banner.jsx", "action": "create",
					"content": "export const Banner = () => <div>{msg\n", "language": "javascript",
				}},
				"summary": "add banner component",
			},
		}),
		tools("", engine.ToolCall{
			ID: "c2", Name: "apply_changes",
			Args: map[string]any{
				"files": []any{map[string]any{
					"path": "src/Banner.jsx", "action": "modify",
					"content": "export const Banner = ({ msg }) => <div>{msg}</div>;\n", "language": "javascript",
				}},
				"summary": "fix banner syntax",
			},
		}),
		text("Added a Banner component."),
	}}

	sess := NewSession(llm, snapshot(), Config{})
	result, err := sess.Run(context.Background(), "add a banner", "")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.TurnCount != 4 {
		t.Errorf("TurnCount = %d, want 4", result.TurnCount)
	}
	if len(result.ChangedFiles) != 1 {
		t.Fatalf("got %d changed files, want 1: %+v", len(result.ChangedFiles), result.ChangedFiles)
	}
	cf := result.ChangedFiles[0]
	if cf.Path != "src/Banner.jsx" || cf.Action != analyzer.ActionModify {
		t.Errorf("changed file = %+v", cf)
	}
	if !strings.Contains(cf.Content, "</div>") {
		t.Errorf("ledger kept the broken content: %q", cf.Content)
	}
	if result.Summary != "add banner component; fix banner syntax" {
		t.Errorf("Summary = %q", result.Summary)
	}

	// The first apply's validation findings must have been replayed to
	// the model so it could self-correct.
	var sawFindings bool
	for _, msg := range llm.lastMsgs {
		if msg.Role == engine.RoleTool && msg.Name == "c1" &&
			strings.Contains(msg.Content, `"valid":false`) {
			sawFindings = true
		}
	}
	if !sawFindings {
		t.Error("validation findings never reached the model")
	}
}

func TestSessionTurnBudgetExhausted(t *testing.T) {
	call := tools("partial progress", engine.ToolCall{
		ID: "c", Name: "read_files",
		Args: map[string]any{"paths": []any{"package.json"}},
	})
	llm := &scriptedClient{replies: []engine.LLMResponse{call, call}}

	sess := NewSession(llm, snapshot(), Config{MaxTurns: 2})
	result, err := sess.Run(context.Background(), "keep reading", "")
	if err != nil {
		t.Fatalf("exhaustion must produce a result, got error %v", err)
	}

	if result.TurnCount != 2 {
		t.Errorf("TurnCount = %d, want 2", result.TurnCount)
	}
	if result.AgentResponse != "partial progress" {
		t.Errorf("AgentResponse = %q, accumulated text must survive", result.AgentResponse)
	}
}

func TestSessionModelFailureYieldsNoResult(t *testing.T) {
	llm := &scriptedClient{
		replies: []engine.LLMResponse{tools("", engine.ToolCall{
			ID: "c", Name: "read_files",
			Args: map[string]any{"paths": []any{"package.json"}},
		})},
		errAt: 2,
		err:   errors.New("rate limited"),
	}

	sess := NewSession(llm, snapshot(), Config{})
	result, err := sess.Run(context.Background(), "do something", "")
	if err == nil {
		t.Fatal("Run() error = nil, want model invocation failure")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil on fatal model error", result)
	}
	if !engine.IsModelInvocationError(err) {
		t.Errorf("error %v is not a ModelInvocationError", err)
	}
}

func TestSessionSnapshotIsolation(t *testing.T) {
	snap := snapshot()
	llm := &scriptedClient{replies: []engine.LLMResponse{
		tools("", engine.ToolCall{
			ID: "c1", Name: "apply_changes",
			Args: map[string]any{
				"files": []any{map[string]any{
					"path": "src/App.jsx", "action": "delete",
				}},
			},
		}),
		text("deleted"),
	}}

	sess := NewSession(llm, snap, Config{})
	if _, err := sess.Run(context.Background(), "remove the app", ""); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The caller's snapshot slice is untouched; a fresh session still
	// sees the original file.
	other := NewSession(llm, snap, Config{})
	found := false
	for _, p := range other.Manifest() {
		if p == "src/App.jsx" {
			found = true
		}
	}
	if !found {
		t.Error("a session's deletions leaked into a sibling session")
	}
}

func TestSessionSystemPromptCarriesManifestAndContext(t *testing.T) {
	llm := &scriptedClient{replies: []engine.LLMResponse{text("ok")}}

	sess := NewSession(llm, snapshot(), Config{})
	if _, err := sess.Run(context.Background(), "hi", "the app is a demo storefront"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(llm.lastMsgs) == 0 || llm.lastMsgs[0].Role != engine.RoleSystem {
		t.Fatal("first message is not the system prompt")
	}
	sys := llm.lastMsgs[0].Content
	if !strings.Contains(sys, "src/App.jsx") || !strings.Contains(sys, "package.json") {
		t.Error("system prompt does not list the project manifest")
	}
	if !strings.Contains(sys, "demo storefront") {
		t.Error("system prompt does not include the project context")
	}
}
