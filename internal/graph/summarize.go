// ABOUTME: Rolling conversation summarization to keep transcripts under the token ceiling.
// ABOUTME: Older messages are compressed into a summary carried in the checkpoint state.

package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docketry/docket-gateway/internal/checkpoint"
	"github.com/docketry/docket-gateway/internal/llm"
)

const (
	// defaultMaxTokens is the transcript size that triggers compression.
	defaultMaxTokens = 50000
	// defaultMaxSummaryTokens bounds the generated summary.
	defaultMaxSummaryTokens = 2000
)

const summaryPrompt = `Summarize the following conversation between a user and a legal assistant. Preserve client names, email addresses, dates, document details, and any decisions or pending actions. Be concise.

Previous summary (may be empty):
%s

Conversation:
%s

Summary:`

// Summarizer compresses old transcript messages into a rolling summary.
type Summarizer struct {
	model            llm.Completer
	counter          *TokenCounter
	maxTokens        int
	maxSummaryTokens int
	logger           *slog.Logger
}

// NewSummarizer creates a summarizer backed by the given completion model.
func NewSummarizer(model llm.Completer, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		model:            model,
		counter:          GetTokenCounter(),
		maxTokens:        defaultMaxTokens,
		maxSummaryTokens: defaultMaxSummaryTokens,
		logger:           logger.With("component", "summarizer"),
	}
}

// Compress folds older messages into the state summary when the transcript
// exceeds the token ceiling. It reports whether compression happened.
func (s *Summarizer) Compress(ctx context.Context, state *checkpoint.State) (bool, error) {
	if s == nil || s.model == nil {
		return false, nil
	}

	total := s.counter.CountMessages(state.Messages)
	if total <= s.maxTokens {
		return false, nil
	}

	cut := cutIndex(state.Messages)
	if cut <= 0 {
		return false, nil
	}

	old := state.Messages[:cut]
	summary, err := s.model.Complete(ctx, fmt.Sprintf(summaryPrompt, state.Summary, renderTranscript(old)))
	if err != nil {
		return false, fmt.Errorf("summarizing conversation: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if budget := s.counter.Count(summary); budget > s.maxSummaryTokens {
		s.logger.Warn("summary exceeds token budget", "tokens", budget)
	}

	s.logger.Info("compressed conversation history",
		"dropped_messages", cut,
		"total_tokens", total)

	state.Summary = summary
	state.Messages = append([]llm.Message(nil), state.Messages[cut:]...)
	return true, nil
}

// cutIndex returns the index of the most recent user message, so the tail
// kept after compression always starts at a user turn. Tool results never
// get separated from their tool calls this way.
func cutIndex(messages []llm.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			return i
		}
	}
	return 0
}

func renderTranscript(messages []llm.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		label := string(msg.Role)
		if msg.Agent != "" {
			label = msg.Agent
		}
		fmt.Fprintf(&b, "%s: %s\n", label, msg.Content)
	}
	return b.String()
}
