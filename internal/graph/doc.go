// Package graph executes the supervisor/sub-agent conversation loop.
//
// # Overview
//
// A Runner drives one conversation thread. The supervisor agent reasons over
// the shared transcript and dispatches tool calls; handoff results transfer
// control to a sub-agent, which runs its own loop over a private transcript
// seeded with the scoped task message only.
//
// # Interrupts
//
// Tools gated behind human confirmation signal suspension by returning
// *tool.InterruptError. The runner persists the pending invocation (and, for
// sub-agents, the private transcript) into the checkpoint before surfacing
// the interrupt, so a fresh process can resume. Resume re-invokes the pending
// tool with the human reply attached to the context and continues whichever
// loops were suspended, innermost first.
//
// # Events
//
// Execution emits raw NodeEvents in order. Reserved node names carry a
// double-underscore prefix ("__summary__") and are meant to be filtered by
// the consumer.
//
// # History compression
//
// Before each supervisor round the Summarizer folds old messages into a
// rolling summary once the transcript crosses a token ceiling. The cut always
// lands on a user-message boundary so tool calls keep their results.
package graph
