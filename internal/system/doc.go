// Package system assembles the agent system and streams its output.
//
// # Manager
//
// The Manager owns one conversation thread end to end. Build constructs each
// sub-agent through its registered builder, records per-agent build outcomes,
// wires the surviving handoff tools into the supervisor, and acquires the
// thread's checkpoint store. A builder failure disables that agent for the
// session without failing the build; only a total wipeout is an error.
//
// # Streaming
//
// Stream and Resume run one conversational turn and return a channel of
// normalized events plus an error channel. Normalization applies a fixed
// mapping to the runner's raw node events:
//
//   - an interrupt halts the turn with an interrupt event
//   - reserved ("__"-prefixed) nodes are dropped
//   - a supervisor terminal response completes the turn
//   - everything else surfaces as a progress message
//
// The events channel is closed before the error channel is written, so
// consumers can range over events and then check for a turn error.
package system
