// ABOUTME: Supervisor builder: routes work to whichever sub-agents a session managed to build.
// ABOUTME: Carries forward_message for verbatim relays and optional web search.

package agents

import (
	"context"
	"fmt"

	"github.com/docketry/docket-gateway/internal/graph"
	"github.com/docketry/docket-gateway/internal/tool"
	"github.com/docketry/docket-gateway/internal/tools"
)

// SupervisorBuilder assembles the supervisor from the handoff tools of the
// sub-agents that built successfully.
type SupervisorBuilder struct {
	deps         Deps
	searchAPIKey string
}

func NewSupervisorBuilder(deps Deps, searchAPIKey string) *SupervisorBuilder {
	return &SupervisorBuilder{deps: deps, searchAPIKey: searchAPIKey}
}

// CreateAgent builds the supervisor. handoffs must be non-empty; a session
// with zero sub-agents has nothing to supervise.
func (b *SupervisorBuilder) CreateAgent(ctx context.Context, handoffs []tool.Tool) (*graph.Agent, error) {
	if len(handoffs) == 0 {
		return nil, fmt.Errorf("%w: no sub-agents to supervise", ErrAgentInternal)
	}

	agentTools := []tool.Tool{tools.ForwardMessage(AgentSupervisor)}
	if b.searchAPIKey != "" {
		agentTools = append(agentTools, tools.WebSearch(b.searchAPIKey, "", nil))
	}
	agentTools = append(agentTools, handoffs...)

	prompt, err := b.deps.Prompts.Load(AgentSupervisor, promptVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create supervisor", ErrAgentInternal)
	}

	return &graph.Agent{
		Name:   AgentSupervisor,
		Prompt: prompt,
		Tools:  agentTools,
		LLM:    b.deps.Model,
	}, nil
}
