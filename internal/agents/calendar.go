// ABOUTME: Calendar agent builder: event CRUD on the user's primary Google calendar.
// ABOUTME: Shares the client lookup tool so scheduling can resolve client emails.

package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/docketry/docket-gateway/internal/auth"
	"github.com/docketry/docket-gateway/internal/clientdb"
	"github.com/docketry/docket-gateway/internal/graph"
	"github.com/docketry/docket-gateway/internal/handoff"
	"github.com/docketry/docket-gateway/internal/tool"
	"github.com/docketry/docket-gateway/internal/tools"
)

// CalendarBuilder constructs the calendar agent for a session.
type CalendarBuilder struct {
	deps    Deps
	handoff tool.Tool
}

func NewCalendarBuilder(deps Deps) *CalendarBuilder {
	return &CalendarBuilder{
		deps: deps,
		handoff: handoff.New(AgentCalendar, handoff.Options{
			Description: "Assign a task to the calendar agent. It can list, create, update, and delete events on the user's Google Calendar and look up client email addresses for invitations.",
		}),
	}
}

func (b *CalendarBuilder) Name() string { return AgentCalendar }

func (b *CalendarBuilder) HandoffTool() tool.Tool { return b.handoff }

func (b *CalendarBuilder) CreateAgent(ctx context.Context) (*graph.Agent, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, fmt.Errorf("%w: no session user", ErrAgentInternal)
	}

	token, err := b.deps.Clients.GoogleToken(ctx, user.UserID)
	if errors.Is(err, clientdb.ErrTokenNotFound) {
		return nil, fmt.Errorf("%w: google account not connected", ErrAuthorizationRequired)
	}
	if err != nil {
		b.deps.Logger.Error("google token lookup failed", "agent", AgentCalendar, "error", err)
		return nil, fmt.Errorf("%w: failed to create calendar agent", ErrAgentInternal)
	}

	provider := NewCalendarProvider(token, "", nil)
	agentTools, err := provider.Discover(ctx)
	if err != nil {
		b.deps.Logger.Error("tool discovery failed", "agent", AgentCalendar, "error", err)
		return nil, fmt.Errorf("%w: failed to create calendar agent", ErrAgentInternal)
	}
	agentTools = append(agentTools, tools.EmailLookup(b.deps.Clients, b.deps.Logger))

	prompt, err := b.deps.Prompts.Load(AgentCalendar, promptVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create calendar agent", ErrAgentInternal)
	}

	return &graph.Agent{
		Name:   AgentCalendar,
		Prompt: prompt,
		Tools:  agentTools,
		LLM:    b.deps.Model,
	}, nil
}
