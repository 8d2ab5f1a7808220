// ABOUTME: Agent is a capability-bound conversational unit: name, prompt, tools, model.
// ABOUTME: Stateless per invocation; all conversation state lives in the checkpoint store.

package graph

import (
	"github.com/docketry/docket-gateway/internal/llm"
	"github.com/docketry/docket-gateway/internal/tool"
)

// Agent is a named, capability-bound reasoning unit. Agents are built once
// per session and owned exclusively by that session; only conversation state
// persists beyond it.
type Agent struct {
	Name   string
	Prompt string
	Tools  []tool.Tool
	LLM    llm.Client
}

// Tool returns the agent's capability with the given name.
func (a *Agent) Tool(name string) (tool.Tool, bool) {
	for _, t := range a.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return tool.Tool{}, false
}

func (a *Agent) toolDefs() []llm.ToolDef {
	defs := make([]llm.ToolDef, len(a.Tools))
	for i, t := range a.Tools {
		defs[i] = llm.ToolDef{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}
	}
	return defs
}
