// Package handoff builds the tools the supervisor uses to delegate work to
// sub-agents, packaging the task description with user context and learned
// preferences.
package handoff
