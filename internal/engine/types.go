package engine

import (
	"context"
	"fmt"
)

// MessageRole represents the role of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ChatMessage is the provider-agnostic message we pass around.
type ChatMessage struct {
	Role    MessageRole // Role of the message sender
	Content string      // Message content
	Name    string      // Optional: tool call ID for tool messages
	// ToolCalls stores the tool calls made by this assistant message.
	// Providers require them when the message is replayed on the next turn.
	ToolCalls []ToolCall
}

// Validate checks if the ChatMessage is valid.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
		// Valid roles
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if m.Role == RoleTool && m.Name == "" {
		return fmt.Errorf("tool messages must have a Name field")
	}
	return nil
}

// Usage holds token accounting returned by providers.
type Usage struct {
	Input  int
	Output int
}

// Add accumulates another usage sample.
func (u *Usage) Add(other Usage) {
	u.Input += other.Input
	u.Output += other.Output
}

// Total returns the combined token count.
func (u Usage) Total() int { return u.Input + u.Output }

// ToolCall represents a function/tool the assistant requested.
type ToolCall struct {
	ID   string // Provider-specific tool call ID (e.g., OpenAI's call_xxx)
	Name string
	Args map[string]any
}

// ReplyKind discriminates the two shapes a model turn can take.
type ReplyKind int

const (
	// ReplyText is a plain textual answer; it terminates the session.
	ReplyText ReplyKind = iota
	// ReplyToolCalls carries one or more tool calls, optionally with
	// accompanying commentary in Text.
	ReplyToolCalls
)

// ModelReply is the normalized, tagged result of one model turn.
// Kind is authoritative: a ReplyToolCalls turn may still carry Text,
// and that text participates in "last non-empty text wins".
type ModelReply struct {
	Kind      ReplyKind
	Text      string
	ToolCalls []ToolCall
}

// LLMResponse is a normalized result of one chat call.
type LLMResponse struct {
	Reply        ModelReply
	Usage        Usage
	Model        string
	FinishReason string // "stop" | "length" | "tool_calls" | "content_filter"
}

// LLMClient abstracts the model-invocation SDK (OpenAI, Anthropic, etc.).
type LLMClient interface {
	GenerateWithTools(ctx context.Context, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (LLMResponse, error)
}

// ChatOptions keeps knobs forwarded to the SDK.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
}

// ToolSchema is the JSON schema the provider expects for function calling.
type ToolSchema struct {
	Name        string
	Description string
	JSONSchema  string // raw JSON string
}
