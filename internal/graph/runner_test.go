// ABOUTME: Tests for the runner's supervisor loop, handoffs, and interrupt/resume.
// ABOUTME: Uses scripted model clients and a real temporary checkpoint store.

package graph

import (
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docketry/docket-gateway/internal/checkpoint"
	"github.com/docketry/docket-gateway/internal/hitl"
	"github.com/docketry/docket-gateway/internal/llm"
	"github.com/docketry/docket-gateway/internal/tool"
)

// scriptedClient plays back canned responses in order.
type scriptedClient struct {
	responses []*llm.ChatResponse
	requests  []*llm.ChatRequest
}

func (s *scriptedClient) Chat(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return &llm.ChatResponse{Content: "out of script", StopReason: llm.StopEndTurn}, nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *scriptedClient) Complete(context.Context, string) (string, error) {
	return "proceed", nil
}

type approveClassifier struct{}

func (approveClassifier) Complete(context.Context, string) (string, error) {
	return "proceed", nil
}

func newTestStore(t *testing.T) *checkpoint.Store {
	t.Helper()
	m := checkpoint.NewManager(filepath.Join(t.TempDir(), "checkpoints.db"), slog.Default())
	t.Cleanup(m.Release)
	store, err := m.Acquire(context.Background())
	require.NoError(t, err)
	return store
}

func collectEvents() (*[]*NodeEvent, EmitFunc) {
	var events []*NodeEvent
	return &events, func(e *NodeEvent) { events = append(events, e) }
}

func TestRunner_DirectAnswer(t *testing.T) {
	supLLM := &scriptedClient{responses: []*llm.ChatResponse{
		{Content: "Hello! How can I help?", StopReason: llm.StopEndTurn},
	}}
	sup := &Agent{Name: "supervisor", Prompt: "You help.", LLM: supLLM}
	store := newTestStore(t)

	r := NewRunner(sup, nil, store, nil, "t1", slog.Default())
	events, emit := collectEvents()

	require.NoError(t, r.Run(context.Background(), "hi", emit))

	require.Len(t, *events, 1)
	ev := (*events)[0]
	assert.Equal(t, "supervisor", ev.Node)
	assert.Equal(t, "Hello! How can I help?", ev.Message.Content)
	assert.Equal(t, llm.StopEndTurn, ev.StopReason)

	state, err := store.Load(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, llm.RoleUser, state.Messages[0].Role)
	assert.Equal(t, llm.RoleAssistant, state.Messages[1].Role)
	assert.Nil(t, state.Pending)
}

func TestRunner_UnknownToolBecomesErrorResult(t *testing.T) {
	supLLM := &scriptedClient{responses: []*llm.ChatResponse{
		{StopReason: llm.StopToolUse, ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "no_such_tool", Input: json.RawMessage(`{}`)},
		}},
		{Content: "Sorry, I can't do that.", StopReason: llm.StopEndTurn},
	}}
	sup := &Agent{Name: "supervisor", LLM: supLLM}
	store := newTestStore(t)

	r := NewRunner(sup, nil, store, nil, "t1", slog.Default())
	_, emit := collectEvents()

	require.NoError(t, r.Run(context.Background(), "do something odd", emit))

	state, err := store.Load(context.Background(), "t1")
	require.NoError(t, err)
	var toolMsg *llm.Message
	for i := range state.Messages {
		if state.Messages[i].Role == llm.RoleTool {
			toolMsg = &state.Messages[i]
		}
	}
	require.NotNil(t, toolMsg)
	assert.True(t, toolMsg.IsError)
	assert.Contains(t, toolMsg.Content, "unknown tool")
}

// buildEmailScenario wires a supervisor that hands off to an email agent
// whose send tool is gated behind human confirmation. Scripts are supplied
// per run because a resumed process starts with fresh model state.
func buildEmailScenario(t *testing.T, store *checkpoint.Store, sent *json.RawMessage, supResponses, emailResponses []*llm.ChatResponse) *Runner {
	t.Helper()

	sendTool := tool.Tool{
		Name: "send_gmail_message",
		Handler: func(_ context.Context, input json.RawMessage) (*tool.Result, error) {
			*sent = input
			return &tool.Result{Content: "Message sent."}, nil
		},
	}
	gated := hitl.Wrap(sendTool, approveClassifier{}, true, nil)

	email := &Agent{
		Name:   "email_agent",
		Prompt: "You send email.",
		Tools:  []tool.Tool{gated},
		LLM:    &scriptedClient{responses: emailResponses},
	}

	handoffTool := tool.Tool{
		Name: "assign_task_to_email_agent",
		Handler: func(context.Context, json.RawMessage) (*tool.Result, error) {
			return &tool.Result{Handoff: &tool.Handoff{
				Target: "email_agent",
				Input:  "Task: Send John a reminder",
				Ack:    "Successfully transferred to email_agent",
			}}, nil
		},
	}
	sup := &Agent{
		Name:   "supervisor",
		Prompt: "You supervise.",
		Tools:  []tool.Tool{handoffTool},
		LLM:    &scriptedClient{responses: supResponses},
	}

	return NewRunner(sup, []*Agent{email}, store, nil, "t1", slog.Default())
}

func TestRunner_InterruptAndResume(t *testing.T) {
	store := newTestStore(t)
	var sent json.RawMessage

	r := buildEmailScenario(t, store, &sent,
		[]*llm.ChatResponse{
			{StopReason: llm.StopToolUse, ToolCalls: []llm.ToolCall{
				{ID: "h1", Name: "assign_task_to_email_agent", Input: json.RawMessage(`{"task_description":"Send John a reminder"}`)},
			}},
		},
		[]*llm.ChatResponse{
			{StopReason: llm.StopToolUse, ToolCalls: []llm.ToolCall{
				{ID: "send1", Name: "send_gmail_message", Input: json.RawMessage(`{"to":"john@example.com","subject":"Reminder","message":"Hi John"}`)},
			}},
		})
	events, emit := collectEvents()

	require.NoError(t, r.Run(context.Background(), "Send John a reminder email", emit))

	// The gated tool suspended the turn.
	last := (*events)[len(*events)-1]
	require.NotNil(t, last.Interrupt)
	assert.Equal(t, "email_agent", last.Node)
	assert.Contains(t, last.Interrupt.Payload, "Check the data before the execution please")
	assert.Contains(t, last.Interrupt.Payload, "john@example.com")
	assert.Nil(t, sent)

	state, err := store.Load(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, state.Pending)
	assert.Equal(t, "email_agent", state.Pending.Agent)
	assert.Equal(t, "send_gmail_message", state.Pending.ToolName)
	assert.Equal(t, "h1", state.Pending.HandoffCallID)
	assert.NotEmpty(t, state.Pending.SubMessages)

	// A fresh runner resumes from the durable checkpoint, as after a restart.
	r2 := buildEmailScenario(t, store, &sent,
		[]*llm.ChatResponse{
			{Content: "Done, the email was sent.", StopReason: llm.StopEndTurn},
		},
		[]*llm.ChatResponse{
			{Content: "Email sent to John.", StopReason: llm.StopEndTurn},
		})
	events2, emit2 := collectEvents()

	require.NoError(t, r2.Run(context.Background(), "yes, send it", emit2))

	require.NotNil(t, sent)
	assert.Contains(t, string(sent), "john@example.com")

	final := (*events2)[len(*events2)-1]
	require.NotNil(t, final.Message)
	assert.Equal(t, "supervisor", final.Node)
	assert.Equal(t, "Done, the email was sent.", final.Message.Content)
	assert.Equal(t, llm.StopEndTurn, final.StopReason)

	state, err = store.Load(context.Background(), "t1")
	require.NoError(t, err)
	assert.Nil(t, state.Pending)

	// The handoff result folds the ack and the sub-agent's final response
	// into the supervisor transcript.
	var handoffMsg *llm.Message
	for i := range state.Messages {
		if state.Messages[i].Role == llm.RoleTool && state.Messages[i].ToolUseID == "h1" {
			handoffMsg = &state.Messages[i]
		}
	}
	require.NotNil(t, handoffMsg)
	assert.Contains(t, handoffMsg.Content, "Successfully transferred to email_agent")
	assert.Contains(t, handoffMsg.Content, "Email sent to John.")
}

// A human reply resolves exactly one suspended invocation. When the resumed
// agent goes on to issue another gated call in the same turn, that call must
// suspend on its own instead of reusing the earlier reply.
func TestRunner_SecondGatedCallAfterResumeInterruptsAgain(t *testing.T) {
	store := newTestStore(t)

	var sends []string
	sendTool := tool.Tool{
		Name: "send_gmail_message",
		Handler: func(_ context.Context, input json.RawMessage) (*tool.Result, error) {
			sends = append(sends, string(input))
			return &tool.Result{Content: "Message sent."}, nil
		},
	}

	handoffTool := tool.Tool{
		Name: "assign_task_to_email_agent",
		Handler: func(context.Context, json.RawMessage) (*tool.Result, error) {
			return &tool.Result{Handoff: &tool.Handoff{
				Target: "email_agent",
				Input:  "Task: Send reminders to John and Mary",
				Ack:    "Successfully transferred to email_agent",
			}}, nil
		},
	}

	newRunner := func(supResponses, emailResponses []*llm.ChatResponse) *Runner {
		email := &Agent{
			Name:  "email_agent",
			Tools: []tool.Tool{hitl.Wrap(sendTool, approveClassifier{}, true, nil)},
			LLM:   &scriptedClient{responses: emailResponses},
		}
		sup := &Agent{
			Name:  "supervisor",
			Tools: []tool.Tool{handoffTool},
			LLM:   &scriptedClient{responses: supResponses},
		}
		return NewRunner(sup, []*Agent{email}, store, nil, "t1", slog.Default())
	}

	r := newRunner(
		[]*llm.ChatResponse{
			{StopReason: llm.StopToolUse, ToolCalls: []llm.ToolCall{
				{ID: "h1", Name: "assign_task_to_email_agent", Input: json.RawMessage(`{"task_description":"Send reminders"}`)},
			}},
		},
		[]*llm.ChatResponse{
			{StopReason: llm.StopToolUse, ToolCalls: []llm.ToolCall{
				{ID: "send1", Name: "send_gmail_message", Input: json.RawMessage(`{"to":"john@example.com","subject":"Reminder","message":"Hi John"}`)},
			}},
		})
	_, emit := collectEvents()
	require.NoError(t, r.Run(context.Background(), "Send John and Mary reminder emails", emit))
	require.Empty(t, sends)

	// On resume the agent confirms the first send, then issues a second one.
	r2 := newRunner(nil,
		[]*llm.ChatResponse{
			{StopReason: llm.StopToolUse, ToolCalls: []llm.ToolCall{
				{ID: "send2", Name: "send_gmail_message", Input: json.RawMessage(`{"to":"mary@example.com","subject":"Reminder","message":"Hi Mary"}`)},
			}},
		})
	events2, emit2 := collectEvents()
	require.NoError(t, r2.Run(context.Background(), "proceed", emit2))

	// Only the confirmed send executed; the second suspended for its own reply.
	require.Len(t, sends, 1)
	assert.Contains(t, sends[0], "john@example.com")

	last := (*events2)[len(*events2)-1]
	require.NotNil(t, last.Interrupt)
	assert.Equal(t, "email_agent", last.Node)
	assert.Contains(t, last.Interrupt.Payload, "mary@example.com")

	state, err := store.Load(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, state.Pending)
	assert.Equal(t, "send_gmail_message", state.Pending.ToolName)
	assert.Contains(t, string(state.Pending.Input), "mary@example.com")
}

func TestRunner_ResumeWithoutPending(t *testing.T) {
	sup := &Agent{Name: "supervisor", LLM: &scriptedClient{}}
	r := NewRunner(sup, nil, newTestStore(t), nil, "t1", slog.Default())

	_, emit := collectEvents()
	err := r.Resume(context.Background(), "yes", emit)
	assert.ErrorIs(t, err, ErrNoPending)
}

func TestRunner_SystemPromptCarriesSummary(t *testing.T) {
	supLLM := &scriptedClient{responses: []*llm.ChatResponse{
		{Content: "ok", StopReason: llm.StopEndTurn},
	}}
	sup := &Agent{Name: "supervisor", Prompt: "Base prompt.", LLM: supLLM}
	store := newTestStore(t)

	require.NoError(t, store.Save(context.Background(), "t1", &checkpoint.State{
		Summary: "Earlier the user discussed the Smith case.",
	}))

	r := NewRunner(sup, nil, store, nil, "t1", slog.Default())
	_, emit := collectEvents()
	require.NoError(t, r.Run(context.Background(), "continue", emit))

	require.Len(t, supLLM.requests, 1)
	assert.Contains(t, supLLM.requests[0].System, "Base prompt.")
	assert.Contains(t, supLLM.requests[0].System, "Smith case")
}
