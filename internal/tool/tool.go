// ABOUTME: Core capability model shared by all agents: named, schema-described callables.
// ABOUTME: Tool results may carry a Handoff control value that transfers control between agents.

package tool

import (
	"context"
	"encoding/json"
)

// Handler executes a tool invocation. Input is the raw JSON argument object
// produced by the model. Implementations return a Result on success; errors
// are surfaced to the calling agent as error-flavored tool output.
type Handler func(ctx context.Context, input json.RawMessage) (*Result, error)

// Tool is a named, schema-described capability an agent may invoke.
type Tool struct {
	Name        string
	Description string
	InputSchema string // JSON Schema object for the input
	Handler     Handler
}

// Result is the outcome of a tool invocation.
type Result struct {
	Content string
	// Handoff, when non-nil, instructs the running graph to transfer control
	// to another agent instead of treating Content as plain tool output.
	Handoff *Handoff
}

// Handoff transfers control and a scoped task to another agent. The target
// agent receives Input as its sole input; the conversation history is never
// forwarded.
type Handoff struct {
	Target string // agent name to transfer control to
	Input  string // scoped task message for the target agent
	Ack    string // acknowledgement appended to the shared transcript
}
