// ABOUTME: Session manager: builds the agent roster per session and streams normalized events.
// ABOUTME: Build failures degrade gracefully; the supervisor gets whichever agents survived.

package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docketry/docket-gateway/internal/agents"
	"github.com/docketry/docket-gateway/internal/checkpoint"
	"github.com/docketry/docket-gateway/internal/graph"
	"github.com/docketry/docket-gateway/internal/llm"
	"github.com/docketry/docket-gateway/internal/tool"
)

// ErrNoAgentsBuilt means every sub-agent builder failed for this session.
var ErrNoAgentsBuilt = errors.New("no agents could be built")

// BuildInfo records one builder's outcome for diagnostics.
type BuildInfo struct {
	Built bool
	Err   string
}

// Manager owns one session's agent roster and drives conversation turns.
// Build must succeed before Stream or Resume.
type Manager struct {
	builders    []agents.Builder
	supervisor  *agents.SupervisorBuilder
	checkpoints *checkpoint.Manager
	model       llm.Completer
	threadID    string
	logger      *slog.Logger

	runner    *graph.Runner
	buildInfo map[string]BuildInfo
}

// NewManager wires a session manager. Builders run in the given order; order
// is part of the roster's observable behavior, so callers fix it once.
func NewManager(builders []agents.Builder, supervisor *agents.SupervisorBuilder, checkpoints *checkpoint.Manager, model llm.Completer, threadID string, logger *slog.Logger) *Manager {
	return &Manager{
		builders:    builders,
		supervisor:  supervisor,
		checkpoints: checkpoints,
		model:       model,
		threadID:    threadID,
		logger:      logger.With("component", "system", "thread_id", threadID),
	}
}

// Build constructs the session's agents. Individual builder failures are
// recorded and skipped; only a fully failed roster is an error.
func (m *Manager) Build(ctx context.Context) error {
	var (
		subs     []*graph.Agent
		handoffs []tool.Tool
	)
	m.buildInfo = make(map[string]BuildInfo, len(m.builders))

	for _, b := range m.builders {
		agent, err := b.CreateAgent(ctx)
		if err != nil {
			m.logger.Warn("agent build failed", "agent", b.Name(), "error", err)
			m.buildInfo[b.Name()] = BuildInfo{Err: err.Error()}
			continue
		}
		m.buildInfo[b.Name()] = BuildInfo{Built: true}
		subs = append(subs, agent)
		handoffs = append(handoffs, b.HandoffTool())
	}

	if len(subs) == 0 {
		return ErrNoAgentsBuilt
	}

	sup, err := m.supervisor.CreateAgent(ctx, handoffs)
	if err != nil {
		return fmt.Errorf("building supervisor: %w", err)
	}

	store, err := m.checkpoints.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring checkpointer: %w", err)
	}

	summarizer := graph.NewSummarizer(m.model, m.logger)
	m.runner = graph.NewRunner(sup, subs, store, summarizer, m.threadID, m.logger)

	m.logger.Info("session agents built", "agents", len(subs))
	return nil
}

// BuildInfo returns the per-agent build outcomes from the last Build.
func (m *Manager) BuildInfo() map[string]BuildInfo {
	return m.buildInfo
}

// Stream runs one user message through the graph and emits normalized
// events. The error channel yields at most one error after events close.
func (m *Manager) Stream(ctx context.Context, message string) (<-chan Event, <-chan error) {
	return m.run(ctx, func(emit graph.EmitFunc) error {
		return m.runner.Run(ctx, message, emit)
	}, "failed to stream agent events")
}

// Resume feeds the human reply to the session's suspended action.
func (m *Manager) Resume(ctx context.Context, reply string) (<-chan Event, <-chan error) {
	return m.run(ctx, func(emit graph.EmitFunc) error {
		return m.runner.Resume(ctx, reply, emit)
	}, "failed to resume agent after interrupt")
}

func (m *Manager) run(ctx context.Context, fn func(graph.EmitFunc) error, failure string) (<-chan Event, <-chan error) {
	events := make(chan Event)
	errs := make(chan error, 1)

	go func() {
		defer close(errs)
		defer close(events)

		halted := false
		emit := func(raw *graph.NodeEvent) {
			if halted {
				return
			}
			ev := normalize(raw)
			if ev == nil {
				return
			}
			if ev.Type == EventInterrupt || ev.Type == EventComplete {
				halted = true
			}
			select {
			case events <- *ev:
			case <-ctx.Done():
				halted = true
			}
		}

		if err := fn(emit); err != nil {
			m.logger.Error("turn failed", "error", err)
			errs <- fmt.Errorf("%w: %s", agents.ErrAgentInternal, failure)
		}
	}()

	return events, errs
}

// normalize maps a raw node event to the client-facing stream, or nil when
// the event is internal. The mapping is deterministic: reserved nodes and
// non-assistant or empty messages are dropped; a terminal supervisor message
// completes the turn; an interrupt halts it.
func normalize(raw *graph.NodeEvent) *Event {
	if raw.Interrupt != nil {
		return &Event{Type: EventInterrupt, Content: raw.Interrupt.Payload, Agent: raw.Node}
	}
	if graph.ReservedNode(raw.Node) {
		return nil
	}
	if raw.Message == nil || raw.Message.Role != llm.RoleAssistant || raw.Message.Content == "" {
		return nil
	}
	if raw.Node == agents.AgentSupervisor && llm.Terminal(raw.StopReason) {
		return &Event{Type: EventComplete, Content: raw.Message.Content, Agent: raw.Node}
	}
	return &Event{Type: EventMessage, Content: raw.Message.Content, Agent: raw.Node}
}
