// ABOUTME: Normalized client-facing event type emitted by the session manager.
// ABOUTME: Three kinds: intermediate message, interrupt prompt, terminal completion.

package system

// EventType classifies a normalized stream event.
type EventType string

const (
	// EventMessage is an intermediate agent message within a turn.
	EventMessage EventType = "message"
	// EventInterrupt asks the human to confirm a gated action. It halts
	// the turn; the next client message is the reply.
	EventInterrupt EventType = "interrupt"
	// EventComplete is the supervisor's final answer for the turn.
	EventComplete EventType = "complete"
)

// Event is one normalized stream event.
type Event struct {
	Type    EventType
	Content string
	Agent   string
}
