// ABOUTME: Email agent builder: Gmail sending gated by human confirmation, plus client lookup.
// ABOUTME: Skipped for sessions whose user has not connected a Google account.

package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docketry/docket-gateway/internal/auth"
	"github.com/docketry/docket-gateway/internal/clientdb"
	"github.com/docketry/docket-gateway/internal/graph"
	"github.com/docketry/docket-gateway/internal/handoff"
	"github.com/docketry/docket-gateway/internal/hitl"
	"github.com/docketry/docket-gateway/internal/llm"
	"github.com/docketry/docket-gateway/internal/prompts"
	"github.com/docketry/docket-gateway/internal/tool"
	"github.com/docketry/docket-gateway/internal/tools"
)

const promptVersion = "v1"

// Deps bundles the collaborators every builder shares. Per-session state
// (credentials, identity) comes from the context at CreateAgent time.
type Deps struct {
	Model   llm.Client
	Prompts *prompts.Registry
	Clients *clientdb.Directory
	Logger  *slog.Logger
}

// EmailBuilder constructs the email agent for a session.
type EmailBuilder struct {
	deps    Deps
	handoff tool.Tool
}

func NewEmailBuilder(deps Deps) *EmailBuilder {
	return &EmailBuilder{
		deps: deps,
		handoff: handoff.New(AgentEmail, handoff.Options{
			Description:  "Assign a task to the email agent. It can draft and send emails from the user's Gmail account and look up client email addresses in the firm database.",
			SendFullName: true,
		}),
	}
}

func (b *EmailBuilder) Name() string { return AgentEmail }

func (b *EmailBuilder) HandoffTool() tool.Tool { return b.handoff }

func (b *EmailBuilder) CreateAgent(ctx context.Context) (*graph.Agent, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, fmt.Errorf("%w: no session user", ErrAgentInternal)
	}

	token, err := b.deps.Clients.GoogleToken(ctx, user.UserID)
	if errors.Is(err, clientdb.ErrTokenNotFound) {
		return nil, fmt.Errorf("%w: google account not connected", ErrAuthorizationRequired)
	}
	if err != nil {
		b.deps.Logger.Error("google token lookup failed", "agent", AgentEmail, "error", err)
		return nil, fmt.Errorf("%w: failed to create email agent", ErrAgentInternal)
	}

	provider := NewGmailProvider(token, "", nil)
	agentTools, err := provider.Discover(ctx)
	if err != nil {
		b.deps.Logger.Error("tool discovery failed", "agent", AgentEmail, "error", err)
		return nil, fmt.Errorf("%w: failed to create email agent", ErrAgentInternal)
	}

	// Outbound mail waits for human confirmation before sending.
	for i, t := range agentTools {
		if t.Name == "send_gmail_message" {
			agentTools[i] = hitl.Wrap(t, b.deps.Model, true, b.deps.Logger)
		}
	}
	agentTools = append(agentTools, tools.EmailLookup(b.deps.Clients, b.deps.Logger))

	prompt, err := b.deps.Prompts.Load(AgentEmail, promptVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create email agent", ErrAgentInternal)
	}

	return &graph.Agent{
		Name:   AgentEmail,
		Prompt: prompt,
		Tools:  agentTools,
		LLM:    b.deps.Model,
	}, nil
}
