// ABOUTME: Tests for the session manager: roster building and event normalization.
// ABOUTME: Uses stub builders and scripted model clients.

package system

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docketry/docket-gateway/internal/agents"
	"github.com/docketry/docket-gateway/internal/checkpoint"
	"github.com/docketry/docket-gateway/internal/graph"
	"github.com/docketry/docket-gateway/internal/llm"
	"github.com/docketry/docket-gateway/internal/prompts"
	"github.com/docketry/docket-gateway/internal/tool"
)

type scriptedClient struct {
	responses []*llm.ChatResponse
	err       error
}

func (s *scriptedClient) Chat(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &llm.ChatResponse{Content: "out of script", StopReason: llm.StopEndTurn}, nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *scriptedClient) Complete(context.Context, string) (string, error) {
	return "", nil
}

type stubBuilder struct {
	name  string
	agent *graph.Agent
	err   error
}

func (b *stubBuilder) Name() string { return b.name }

func (b *stubBuilder) HandoffTool() tool.Tool {
	return tool.Tool{Name: "assign_task_to_" + b.name}
}

func (b *stubBuilder) CreateAgent(context.Context) (*graph.Agent, error) {
	return b.agent, b.err
}

func newTestManager(t *testing.T, builders []agents.Builder, supModel llm.Client) *Manager {
	t.Helper()

	deps := agents.Deps{
		Model:   supModel,
		Prompts: prompts.NewRegistry("", slog.Default()),
		Logger:  slog.Default(),
	}
	supervisor := agents.NewSupervisorBuilder(deps, "")

	checkpoints := checkpoint.NewManager(filepath.Join(t.TempDir(), "checkpoints.db"), slog.Default())
	t.Cleanup(checkpoints.Release)

	return NewManager(builders, supervisor, checkpoints, supModel, "t1", slog.Default())
}

func TestBuild_AllBuildersFail(t *testing.T) {
	builders := []agents.Builder{
		&stubBuilder{name: "email_agent", err: agents.ErrAuthorizationRequired},
		&stubBuilder{name: "calendar_agent", err: agents.ErrAuthorizationRequired},
	}
	m := newTestManager(t, builders, &scriptedClient{})

	err := m.Build(context.Background())
	assert.ErrorIs(t, err, ErrNoAgentsBuilt)
}

func TestBuild_PartialFailureContinues(t *testing.T) {
	builders := []agents.Builder{
		&stubBuilder{name: "email_agent", err: agents.ErrAuthorizationRequired},
		&stubBuilder{name: "calendar_agent", agent: &graph.Agent{Name: "calendar_agent", LLM: &scriptedClient{}}},
	}
	m := newTestManager(t, builders, &scriptedClient{})

	require.NoError(t, m.Build(context.Background()))

	info := m.BuildInfo()
	assert.False(t, info["email_agent"].Built)
	assert.Contains(t, info["email_agent"].Err, "authorization required")
	assert.True(t, info["calendar_agent"].Built)
}

func TestStream_CompletesOnTerminalSupervisorMessage(t *testing.T) {
	supModel := &scriptedClient{responses: []*llm.ChatResponse{
		{Content: "Happy to help.", StopReason: llm.StopEndTurn},
	}}
	builders := []agents.Builder{
		&stubBuilder{name: "calendar_agent", agent: &graph.Agent{Name: "calendar_agent", LLM: &scriptedClient{}}},
	}
	m := newTestManager(t, builders, supModel)
	require.NoError(t, m.Build(context.Background()))

	events, errs := m.Stream(context.Background(), "hello")

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	require.NoError(t, <-errs)

	require.Len(t, got, 1)
	assert.Equal(t, EventComplete, got[0].Type)
	assert.Equal(t, "Happy to help.", got[0].Content)
	assert.Equal(t, agents.AgentSupervisor, got[0].Agent)
}

func TestStream_ModelFailureIsWrapped(t *testing.T) {
	supModel := &scriptedClient{err: errors.New("rate limited")}
	builders := []agents.Builder{
		&stubBuilder{name: "calendar_agent", agent: &graph.Agent{Name: "calendar_agent", LLM: &scriptedClient{}}},
	}
	m := newTestManager(t, builders, supModel)
	require.NoError(t, m.Build(context.Background()))

	events, errs := m.Stream(context.Background(), "hello")
	for range events {
	}

	err := <-errs
	require.Error(t, err)
	assert.ErrorIs(t, err, agents.ErrAgentInternal)
	assert.Contains(t, err.Error(), "failed to stream agent events")
	assert.NotContains(t, err.Error(), "rate limited")
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  *graph.NodeEvent
		want *Event
	}{
		{
			name: "interrupt halts with payload",
			raw:  &graph.NodeEvent{Node: "email_agent", Interrupt: &graph.Interrupt{Payload: "confirm?"}},
			want: &Event{Type: EventInterrupt, Content: "confirm?", Agent: "email_agent"},
		},
		{
			name: "reserved node is dropped",
			raw:  &graph.NodeEvent{Node: "__summary__"},
			want: nil,
		},
		{
			name: "empty assistant message is dropped",
			raw:  &graph.NodeEvent{Node: "supervisor", Message: &llm.Message{Role: llm.RoleAssistant}},
			want: nil,
		},
		{
			name: "tool message is dropped",
			raw:  &graph.NodeEvent{Node: "email_agent", Message: &llm.Message{Role: llm.RoleTool, Content: "done"}},
			want: nil,
		},
		{
			name: "terminal supervisor message completes",
			raw: &graph.NodeEvent{
				Node:       "supervisor",
				Message:    &llm.Message{Role: llm.RoleAssistant, Content: "All done."},
				StopReason: llm.StopEndTurn,
			},
			want: &Event{Type: EventComplete, Content: "All done.", Agent: "supervisor"},
		},
		{
			name: "non-terminal supervisor message is an update",
			raw: &graph.NodeEvent{
				Node:       "supervisor",
				Message:    &llm.Message{Role: llm.RoleAssistant, Content: "Delegating."},
				StopReason: llm.StopToolUse,
			},
			want: &Event{Type: EventMessage, Content: "Delegating.", Agent: "supervisor"},
		},
		{
			name: "sub-agent message is an update even when terminal",
			raw: &graph.NodeEvent{
				Node:       "email_agent",
				Message:    &llm.Message{Role: llm.RoleAssistant, Content: "Sent."},
				StopReason: llm.StopEndTurn,
			},
			want: &Event{Type: EventMessage, Content: "Sent.", Agent: "email_agent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}
