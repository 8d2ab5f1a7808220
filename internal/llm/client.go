// ABOUTME: Model boundary types and the Client interface the orchestration core calls.
// ABOUTME: Keeps provider SDKs out of the agent, graph, and tool packages.

package llm

import (
	"context"
	"encoding/json"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Stop reasons, normalized across providers.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// Message is one turn in a conversation transcript.
type Message struct {
	Role      string     `json:"role"`
	Agent     string     `json:"agent,omitempty"` // authoring agent for assistant messages
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	ToolUseID string     `json:"tool_use_id,omitempty"` // set on role "tool" results
	IsError   bool       `json:"is_error,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolDef describes a callable capability to the model.
type ToolDef struct {
	Name        string
	Description string
	InputSchema string // JSON Schema object
}

// ChatRequest is one model invocation.
type ChatRequest struct {
	System    string
	Messages  []Message
	Tools     []ToolDef
	MaxTokens int
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
}

// Client is the full conversational model interface.
type Client interface {
	Completer
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// Completer is the single-shot completion surface, enough for classification
// and summarization callers that never need tools.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Terminal reports whether a stop reason ends the agent's turn.
func Terminal(stopReason string) bool {
	return stopReason == StopEndTurn
}
