// ABOUTME: Legal-docs agent builder: drives the document automation service's remote tools.
// ABOUTME: Skipped when the deployment has no legal-docs credential configured.

package agents

import (
	"context"
	"fmt"

	"github.com/docketry/docket-gateway/internal/graph"
	"github.com/docketry/docket-gateway/internal/handoff"
	"github.com/docketry/docket-gateway/internal/tool"
)

// LegalDocsBuilder constructs the legal-docs agent for a session.
type LegalDocsBuilder struct {
	deps    Deps
	baseURL string
	apiKey  string
	handoff tool.Tool
}

func NewLegalDocsBuilder(deps Deps, baseURL, apiKey string) *LegalDocsBuilder {
	return &LegalDocsBuilder{
		deps:    deps,
		baseURL: baseURL,
		apiKey:  apiKey,
		handoff: handoff.New(AgentLegalDocs, handoff.Options{
			Description: "Assign a task to the legal documents agent. It can generate, fill, and manage legal documents through the document automation service.",
		}),
	}
}

func (b *LegalDocsBuilder) Name() string { return AgentLegalDocs }

func (b *LegalDocsBuilder) HandoffTool() tool.Tool { return b.handoff }

func (b *LegalDocsBuilder) CreateAgent(ctx context.Context) (*graph.Agent, error) {
	if b.baseURL == "" || b.apiKey == "" {
		return nil, fmt.Errorf("%w: legal-docs service not configured", ErrAuthorizationRequired)
	}

	provider := NewLegalDocsProvider(b.baseURL, b.apiKey, nil)
	agentTools, err := provider.Discover(ctx)
	if err != nil {
		b.deps.Logger.Error("tool discovery failed", "agent", AgentLegalDocs, "error", err)
		return nil, fmt.Errorf("%w: failed to create legal docs agent", ErrAgentInternal)
	}
	if len(agentTools) == 0 {
		b.deps.Logger.Warn("legal-docs catalog is empty", "agent", AgentLegalDocs)
		return nil, fmt.Errorf("%w: failed to create legal docs agent", ErrAgentInternal)
	}

	prompt, err := b.deps.Prompts.Load(AgentLegalDocs, promptVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create legal docs agent", ErrAgentInternal)
	}

	return &graph.Agent{
		Name:   AgentLegalDocs,
		Prompt: prompt,
		Tools:  agentTools,
		LLM:    b.deps.Model,
	}, nil
}
