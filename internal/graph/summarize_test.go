// ABOUTME: Tests for conversation history compression.
// ABOUTME: Covers the trigger threshold and the user-boundary cut point.

package graph

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docketry/docket-gateway/internal/checkpoint"
	"github.com/docketry/docket-gateway/internal/llm"
)

type summaryModel struct {
	summary string
	called  bool
}

func (m *summaryModel) Complete(context.Context, string) (string, error) {
	m.called = true
	return m.summary, nil
}

func TestCompress_BelowThresholdDoesNothing(t *testing.T) {
	model := &summaryModel{summary: "short"}
	s := NewSummarizer(model, slog.Default())

	state := &checkpoint.State{Messages: []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleAssistant, Content: "hi"},
	}}

	compressed, err := s.Compress(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, compressed)
	assert.False(t, model.called)
	assert.Len(t, state.Messages, 2)
}

func TestCompress_FoldsOldMessagesIntoSummary(t *testing.T) {
	model := &summaryModel{summary: "The user worked through a long document review."}
	s := NewSummarizer(model, slog.Default())

	// Large enough to clear the token ceiling under any counting mode.
	big := strings.Repeat("lorem ipsum dolor sit amet ", 20000)
	state := &checkpoint.State{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: big},
			{Role: llm.RoleAssistant, Agent: "supervisor", Content: "Reviewed."},
			{Role: llm.RoleUser, Content: "What about the deadline?"},
			{Role: llm.RoleAssistant, Agent: "supervisor", Content: "Next Friday."},
		},
	}

	compressed, err := s.Compress(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, compressed)
	assert.True(t, model.called)
	assert.Equal(t, "The user worked through a long document review.", state.Summary)

	// The kept tail starts at the most recent user message.
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "What about the deadline?", state.Messages[0].Content)
	assert.Equal(t, "Next Friday.", state.Messages[1].Content)
}

func TestCutIndex(t *testing.T) {
	messages := []llm.Message{
		{Role: llm.RoleUser},
		{Role: llm.RoleAssistant},
		{Role: llm.RoleTool},
		{Role: llm.RoleUser},
		{Role: llm.RoleAssistant},
	}
	assert.Equal(t, 3, cutIndex(messages))

	assert.Equal(t, 0, cutIndex([]llm.Message{{Role: llm.RoleAssistant}}))
}

func TestNilSummarizerIsInert(t *testing.T) {
	var s *Summarizer

	compressed, err := s.Compress(context.Background(), &checkpoint.State{})
	require.NoError(t, err)
	assert.False(t, compressed)
}
