// ABOUTME: Interrupt signal used by gated tools to suspend graph execution.
// ABOUTME: The resume value (the human's literal reply) travels back in via context.

package tool

import "context"

// InterruptError suspends the surrounding graph when returned by a tool
// handler. It is control flow, not a failure: the graph persists the pending
// invocation, surfaces Payload to the human, and re-invokes the handler with
// the reply once it arrives. Handlers must let it propagate untouched.
type InterruptError struct {
	// Payload is surfaced verbatim to the human.
	Payload string
}

func (e *InterruptError) Error() string {
	return "tool invocation interrupted: awaiting human confirmation"
}

type resumeKey struct{}

// WithResumeValue returns a context carrying the human's reply to a pending
// interrupt. A handler that previously returned an InterruptError sees this
// value on re-invocation and continues instead of suspending again.
func WithResumeValue(ctx context.Context, reply string) context.Context {
	return context.WithValue(ctx, resumeKey{}, reply)
}

// ResumeValue reports the human reply carried by ctx, if any.
func ResumeValue(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(resumeKey{}).(string)
	return v, ok
}
