// ABOUTME: Raw node events emitted by the graph runner as agents execute.
// ABOUTME: Reserved node names (double-underscore prefix) are internal and skipped downstream.

package graph

import (
	"strings"

	"github.com/docketry/docket-gateway/internal/llm"
)

// NodeSummary is the reserved node name for the summarization pre-step.
const NodeSummary = "__summary__"

// NodeEvent is one raw event from the running graph: either a message
// produced by a node, or a pending interrupt.
type NodeEvent struct {
	Node       string
	Message    *llm.Message
	StopReason string
	Interrupt  *Interrupt
}

// Interrupt signals that a gated tool suspended execution and awaits a human
// reply. At most one interrupt is outstanding per session at a time.
type Interrupt struct {
	Payload string
}

// EmitFunc receives raw node events in execution order.
type EmitFunc func(*NodeEvent)

// ReservedNode reports whether a node name is framework-internal.
func ReservedNode(name string) bool {
	return strings.HasPrefix(name, "__")
}
