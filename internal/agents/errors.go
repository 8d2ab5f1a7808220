// ABOUTME: Error classes for agent construction and execution.
// ABOUTME: Raw provider errors are wrapped here before crossing a component edge.

package agents

import "errors"

var (
	// ErrAuthorizationRequired means the agent's backing service has no
	// usable credential for the session user. The agent is skipped, not
	// failed.
	ErrAuthorizationRequired = errors.New("authorization required")

	// ErrAgentInternal covers every other construction or execution
	// failure. Detail stays in logs; callers see a generic message.
	ErrAgentInternal = errors.New("agent internal error")
)
