// ABOUTME: Runner drives the supervisor/sub-agent loop for one conversation thread.
// ABOUTME: Interrupts suspend execution into the checkpoint; resume picks up mid-tool.

package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docketry/docket-gateway/internal/auth"
	"github.com/docketry/docket-gateway/internal/checkpoint"
	"github.com/docketry/docket-gateway/internal/llm"
	"github.com/docketry/docket-gateway/internal/tool"
)

// maxRounds bounds model round-trips per turn, across the supervisor and any
// sub-agent it delegates to.
const maxRounds = 25

const deferredResult = "Not executed: a prior action in this turn is awaiting user confirmation."

// Sentinel errors returned by the runner.
var (
	ErrRoundLimit = errors.New("agent round limit exceeded")
	ErrNoPending  = errors.New("no interrupted action to resume")
)

// Runner executes one conversation thread. It owns no state between calls;
// everything durable lives in the checkpoint store under the thread id.
type Runner struct {
	supervisor *Agent
	subs       map[string]*Agent
	store      *checkpoint.Store
	summarizer *Summarizer
	threadID   string
	logger     *slog.Logger
}

// NewRunner assembles a runner for one thread. Sub-agents are indexed by name
// so handoff targets resolve directly.
func NewRunner(supervisor *Agent, subs []*Agent, store *checkpoint.Store, summarizer *Summarizer, threadID string, logger *slog.Logger) *Runner {
	byName := make(map[string]*Agent, len(subs))
	for _, a := range subs {
		byName[a.Name] = a
	}
	return &Runner{
		supervisor: supervisor,
		subs:       byName,
		store:      store,
		summarizer: summarizer,
		threadID:   threadID,
		logger:     logger.With("component", "runner", "thread_id", threadID),
	}
}

// Run processes one user message. When the thread has a suspended tool
// invocation, the message is consumed as the human reply to it; otherwise it
// starts a fresh supervisor turn.
func (r *Runner) Run(ctx context.Context, userMessage string, emit EmitFunc) error {
	state, err := r.store.Load(ctx, r.threadID)
	if err != nil {
		return err
	}

	if state.Pending != nil {
		return r.resume(ctx, state, userMessage, emit)
	}

	state.Messages = append(state.Messages, llm.Message{
		Role:    llm.RoleUser,
		Content: userMessage,
	})
	return r.runSupervisor(ctx, state, emit)
}

// Resume feeds a human reply to the thread's suspended tool invocation.
func (r *Runner) Resume(ctx context.Context, reply string, emit EmitFunc) error {
	state, err := r.store.Load(ctx, r.threadID)
	if err != nil {
		return err
	}
	if state.Pending == nil {
		return ErrNoPending
	}
	return r.resume(ctx, state, reply, emit)
}

// runSupervisor is the supervisor's reasoning loop: chat, dispatch tool
// calls, repeat until the model ends its turn or an interrupt halts us.
func (r *Runner) runSupervisor(ctx context.Context, state *checkpoint.State, emit EmitFunc) error {
	for round := 0; round < maxRounds; round++ {
		compressed, err := r.summarizer.Compress(ctx, state)
		if err != nil {
			r.logger.Warn("history compression failed", "error", err)
		}
		if compressed {
			emit(&NodeEvent{Node: NodeSummary})
		}

		resp, err := r.supervisor.LLM.Chat(ctx, &llm.ChatRequest{
			System:   r.systemPrompt(ctx, r.supervisor, state),
			Messages: state.Messages,
			Tools:    r.supervisor.toolDefs(),
		})
		if err != nil {
			return fmt.Errorf("supervisor chat: %w", err)
		}

		asst := llm.Message{
			Role:      llm.RoleAssistant,
			Agent:     r.supervisor.Name,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		}
		state.Messages = append(state.Messages, asst)

		if len(resp.ToolCalls) == 0 {
			if err := r.store.Save(ctx, r.threadID, state); err != nil {
				return err
			}
			emit(&NodeEvent{Node: r.supervisor.Name, Message: &asst, StopReason: resp.StopReason})
			return nil
		}

		emit(&NodeEvent{Node: r.supervisor.Name, Message: &asst, StopReason: resp.StopReason})

		for i, call := range resp.ToolCalls {
			halted, err := r.dispatchSupervisorCall(ctx, state, call, resp.ToolCalls[i+1:], emit)
			if err != nil {
				return err
			}
			if halted {
				return nil
			}
		}
	}

	if err := r.store.Save(ctx, r.threadID, state); err != nil {
		return err
	}
	return ErrRoundLimit
}

// dispatchSupervisorCall executes one supervisor tool call. remaining holds
// the sibling calls from the same assistant message: if this call interrupts,
// they get placeholder results so the transcript stays well-formed.
func (r *Runner) dispatchSupervisorCall(ctx context.Context, state *checkpoint.State, call llm.ToolCall, remaining []llm.ToolCall, emit EmitFunc) (bool, error) {
	t, ok := r.supervisor.Tool(call.Name)
	if !ok {
		r.logger.Warn("supervisor requested unknown tool", "tool", call.Name)
		state.Messages = append(state.Messages, errorResult(call.ID, fmt.Sprintf("unknown tool: %s", call.Name)))
		return false, nil
	}

	r.logger.Debug("dispatching supervisor tool", "tool", call.Name)
	res, err := t.Handler(ctx, call.Input)

	var interrupt *tool.InterruptError
	if errors.As(err, &interrupt) {
		state.Pending = &checkpoint.Pending{
			Agent:      r.supervisor.Name,
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Input:      call.Input,
			Payload:    interrupt.Payload,
		}
		deferSiblings(state, remaining)
		if err := r.store.Save(ctx, r.threadID, state); err != nil {
			return false, err
		}
		emit(&NodeEvent{Node: r.supervisor.Name, Interrupt: &Interrupt{Payload: interrupt.Payload}})
		return true, nil
	}
	if err != nil {
		state.Messages = append(state.Messages, errorResult(call.ID, err.Error()))
		return false, nil
	}

	if res.Handoff != nil {
		return r.runHandoff(ctx, state, call, res.Handoff, remaining, emit)
	}

	state.Messages = append(state.Messages, toolResult(call.ID, res.Content))
	return false, nil
}

// runHandoff transfers control to the target agent and folds its final
// response back into the supervisor transcript as the handoff tool result.
// remaining travels with the delegation: if the sub-agent interrupts, the
// supervisor's undispatched sibling calls are deferred before checkpointing.
func (r *Runner) runHandoff(ctx context.Context, state *checkpoint.State, call llm.ToolCall, h *tool.Handoff, remaining []llm.ToolCall, emit EmitFunc) (bool, error) {
	sub, ok := r.subs[h.Target]
	if !ok {
		r.logger.Warn("handoff to unknown agent", "target", h.Target)
		state.Messages = append(state.Messages, errorResult(call.ID, fmt.Sprintf("unknown agent: %s", h.Target)))
		return false, nil
	}

	r.logger.Info("transferring control", "from", r.supervisor.Name, "to", sub.Name)
	subMessages := []llm.Message{{Role: llm.RoleUser, Content: h.Input}}

	final, halted, err := r.runSubAgent(ctx, state, sub, subMessages, call.ID, h.Ack, remaining, emit)
	if err != nil {
		return false, err
	}
	if halted {
		return true, nil
	}

	state.Messages = append(state.Messages, toolResult(call.ID, handoffResult(h.Ack, sub.Name, final)))
	return false, nil
}

// runSubAgent drives a delegated agent's loop over its private transcript.
// On interrupt the private transcript is captured into the checkpoint so the
// loop can continue in a fresh process.
func (r *Runner) runSubAgent(ctx context.Context, state *checkpoint.State, sub *Agent, subMessages []llm.Message, handoffCallID, handoffAck string, supRemaining []llm.ToolCall, emit EmitFunc) (string, bool, error) {
	for round := 0; round < maxRounds; round++ {
		resp, err := sub.LLM.Chat(ctx, &llm.ChatRequest{
			System:   r.systemPrompt(ctx, sub, state),
			Messages: subMessages,
			Tools:    sub.toolDefs(),
		})
		if err != nil {
			return "", false, fmt.Errorf("%s chat: %w", sub.Name, err)
		}

		asst := llm.Message{
			Role:      llm.RoleAssistant,
			Agent:     sub.Name,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		}
		subMessages = append(subMessages, asst)
		emit(&NodeEvent{Node: sub.Name, Message: &asst, StopReason: resp.StopReason})

		if len(resp.ToolCalls) == 0 {
			return resp.Content, false, nil
		}

		for i, call := range resp.ToolCalls {
			t, ok := sub.Tool(call.Name)
			if !ok {
				r.logger.Warn("agent requested unknown tool", "agent", sub.Name, "tool", call.Name)
				subMessages = append(subMessages, errorResult(call.ID, fmt.Sprintf("unknown tool: %s", call.Name)))
				continue
			}

			r.logger.Debug("dispatching tool", "agent", sub.Name, "tool", call.Name)
			res, err := t.Handler(ctx, call.Input)

			var interrupt *tool.InterruptError
			if errors.As(err, &interrupt) {
				for _, sibling := range resp.ToolCalls[i+1:] {
					subMessages = append(subMessages, toolResult(sibling.ID, deferredResult))
				}
				deferSiblings(state, supRemaining)
				state.Pending = &checkpoint.Pending{
					Agent:         sub.Name,
					ToolCallID:    call.ID,
					ToolName:      call.Name,
					Input:         call.Input,
					Payload:       interrupt.Payload,
					SubMessages:   subMessages,
					HandoffCallID: handoffCallID,
					HandoffAck:    handoffAck,
				}
				if err := r.store.Save(ctx, r.threadID, state); err != nil {
					return "", false, err
				}
				emit(&NodeEvent{Node: sub.Name, Interrupt: &Interrupt{Payload: interrupt.Payload}})
				return "", true, nil
			}
			if err != nil {
				subMessages = append(subMessages, errorResult(call.ID, err.Error()))
				continue
			}
			subMessages = append(subMessages, toolResult(call.ID, res.Content))
		}
	}
	return "", false, fmt.Errorf("%s: %w", sub.Name, ErrRoundLimit)
}

// resume re-invokes the suspended tool with the human reply attached to the
// context, then continues whichever loop was halted.
func (r *Runner) resume(ctx context.Context, state *checkpoint.State, reply string, emit EmitFunc) error {
	p := state.Pending
	state.Pending = nil

	r.logger.Info("resuming interrupted tool", "agent", p.Agent, "tool", p.ToolName)

	if p.Agent == r.supervisor.Name {
		return r.resumeSupervisor(ctx, state, p, reply, emit)
	}

	sub, ok := r.subs[p.Agent]
	if !ok {
		return fmt.Errorf("resuming unknown agent %s", p.Agent)
	}

	t, ok := sub.Tool(p.ToolName)
	if !ok {
		return fmt.Errorf("resuming unknown tool %s on %s", p.ToolName, p.Agent)
	}

	subMessages := p.SubMessages
	// The reply is visible only to the suspended invocation. Later gated
	// calls in the resumed turn must interrupt fresh.
	res, err := t.Handler(tool.WithResumeValue(ctx, reply), p.Input)

	var interrupt *tool.InterruptError
	if errors.As(err, &interrupt) {
		state.Pending = p
		state.Pending.Payload = interrupt.Payload
		if err := r.store.Save(ctx, r.threadID, state); err != nil {
			return err
		}
		emit(&NodeEvent{Node: sub.Name, Interrupt: &Interrupt{Payload: interrupt.Payload}})
		return nil
	}
	if err != nil {
		subMessages = append(subMessages, errorResult(p.ToolCallID, err.Error()))
	} else {
		subMessages = append(subMessages, toolResult(p.ToolCallID, res.Content))
	}

	final, halted, err := r.runSubAgent(ctx, state, sub, subMessages, p.HandoffCallID, p.HandoffAck, nil, emit)
	if err != nil {
		return err
	}
	if halted {
		return nil
	}

	state.Messages = append(state.Messages, toolResult(p.HandoffCallID, handoffResult(p.HandoffAck, sub.Name, final)))
	return r.runSupervisor(ctx, state, emit)
}

func (r *Runner) resumeSupervisor(ctx context.Context, state *checkpoint.State, p *checkpoint.Pending, reply string, emit EmitFunc) error {
	t, ok := r.supervisor.Tool(p.ToolName)
	if !ok {
		return fmt.Errorf("resuming unknown tool %s on %s", p.ToolName, p.Agent)
	}

	res, err := t.Handler(tool.WithResumeValue(ctx, reply), p.Input)

	var interrupt *tool.InterruptError
	if errors.As(err, &interrupt) {
		state.Pending = p
		state.Pending.Payload = interrupt.Payload
		if err := r.store.Save(ctx, r.threadID, state); err != nil {
			return err
		}
		emit(&NodeEvent{Node: r.supervisor.Name, Interrupt: &Interrupt{Payload: interrupt.Payload}})
		return nil
	}
	if err != nil {
		state.Messages = append(state.Messages, errorResult(p.ToolCallID, err.Error()))
		return r.runSupervisor(ctx, state, emit)
	}

	if res.Handoff != nil {
		halted, err := r.runHandoff(ctx, state, llm.ToolCall{ID: p.ToolCallID, Name: p.ToolName, Input: p.Input}, res.Handoff, nil, emit)
		if err != nil || halted {
			return err
		}
		return r.runSupervisor(ctx, state, emit)
	}

	state.Messages = append(state.Messages, toolResult(p.ToolCallID, res.Content))
	return r.runSupervisor(ctx, state, emit)
}

// systemPrompt composes the agent's prompt with the session identity and the
// rolling summary, when present.
func (r *Runner) systemPrompt(ctx context.Context, a *Agent, state *checkpoint.State) string {
	var b strings.Builder
	b.WriteString(a.Prompt)

	if user := auth.UserFromContext(ctx); user != nil && user.FullName != "" {
		fmt.Fprintf(&b, "\n\nYou are assisting %s.", user.FullName)
	}
	if state.Summary != "" {
		fmt.Fprintf(&b, "\n\nSummary of the earlier conversation:\n%s", state.Summary)
	}
	return b.String()
}

// handoffResult combines the transfer acknowledgement with the delegated
// agent's final response into a single tool result.
func handoffResult(ack, agentName, final string) string {
	return fmt.Sprintf("%s\n\n%s response:\n%s", ack, agentName, final)
}

func deferSiblings(state *checkpoint.State, remaining []llm.ToolCall) {
	for _, call := range remaining {
		state.Messages = append(state.Messages, toolResult(call.ID, deferredResult))
	}
}

func toolResult(callID, content string) llm.Message {
	return llm.Message{Role: llm.RoleTool, ToolUseID: callID, Content: content}
}

func errorResult(callID, content string) llm.Message {
	return llm.Message{Role: llm.RoleTool, ToolUseID: callID, Content: content, IsError: true}
}
