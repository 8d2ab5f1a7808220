// ABOUTME: Tool provider and builder contracts plus the canonical agent names.
// ABOUTME: Providers discover capabilities from backing services at session build time.

package agents

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/docketry/docket-gateway/internal/graph"
	"github.com/docketry/docket-gateway/internal/tool"
)

// Canonical agent names. Handoff tool names and prompt lookups derive from
// these, so they are part of the wire surface.
const (
	AgentEmail      = "email_agent"
	AgentCalendar   = "calendar_agent"
	AgentLegalDocs  = "legal_docs_app_agent"
	AgentSupervisor = "supervisor"
)

// ToolProvider discovers the tools a backing service offers. Discovery runs
// once per session build; the returned tools are bound to that session's
// credentials.
type ToolProvider interface {
	Discover(ctx context.Context) ([]tool.Tool, error)
}

// Builder constructs one agent for a session. The handoff tool is available
// before construction so the supervisor can be assembled from whichever
// builders succeeded.
type Builder interface {
	Name() string
	HandoffTool() tool.Tool
	CreateAgent(ctx context.Context) (*graph.Agent, error)
}

// GoogleTokens resolves a user's stored Google credential.
type GoogleTokens interface {
	GoogleToken(ctx context.Context, userID string) (*oauth2.Token, error)
}
