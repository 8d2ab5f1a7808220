// Package agents builds the supervisor and domain sub-agents.
//
// # Builders
//
// Each sub-agent has a Builder that assembles its tool set and prompt for the
// authenticated user:
//
//   - EmailBuilder: Gmail send (confirmation-gated) plus client lookup
//   - CalendarBuilder: Google Calendar list/create/update/delete plus client lookup
//   - LegalDocsBuilder: tools proxied from the legal-docs service catalog
//
// Builders distinguish two failure classes. A missing credential (no Google
// token, unconfigured service) returns ErrAuthorizationRequired so the caller
// can tell the user what to connect. Anything else returns ErrAgentInternal
// with the detail kept to logs.
//
// # Tool providers
//
// Providers discover concrete tools against external APIs: GmailProvider and
// CalendarProvider call Google REST endpoints with an OAuth token, and
// LegalDocsProvider fetches a remote tool catalog and invokes entries by name.
// Each provider accepts an injected HTTP client for testing.
//
// The SupervisorBuilder composes the top-level agent from the sub-agents'
// handoff tools plus forward_message and optional web search.
package agents
