// ABOUTME: Tests for the human-in-the-loop tool wrapper.
// ABOUTME: Covers suspension, reply classification, and the email newline rewrite.

package hitl

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docketry/docket-gateway/internal/tool"
)

type stubClassifier struct {
	verdict string
	err     error
	prompt  string
}

func (s *stubClassifier) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.verdict, s.err
}

func passthroughTool(invoked *json.RawMessage) tool.Tool {
	return tool.Tool{
		Name: "send_gmail_message",
		Handler: func(_ context.Context, input json.RawMessage) (*tool.Result, error) {
			if invoked != nil {
				*invoked = input
			}
			return &tool.Result{Content: "sent"}, nil
		},
	}
}

func TestWrap_SuspendsWithoutResumeValue(t *testing.T) {
	gated := Wrap(passthroughTool(nil), &stubClassifier{}, false, nil)

	input := json.RawMessage(`{"to":"a@b.com"}`)
	_, err := gated.Handler(context.Background(), input)

	var ie *tool.InterruptError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "Check the data before the execution please: \n\n{\"to\":\"a@b.com\"}", ie.Payload)
}

func TestWrap_ProceedInvokesBase(t *testing.T) {
	var invoked json.RawMessage
	classifier := &stubClassifier{verdict: "proceed"}
	gated := Wrap(passthroughTool(&invoked), classifier, false, nil)

	ctx := tool.WithResumeValue(context.Background(), "yes, send it")
	result, err := gated.Handler(ctx, json.RawMessage(`{"to":"a@b.com"}`))

	require.NoError(t, err)
	assert.Equal(t, "sent", result.Content)
	assert.JSONEq(t, `{"to":"a@b.com"}`, string(invoked))
	assert.Contains(t, classifier.prompt, "yes, send it")
}

func TestWrap_ProceedRewritesEmailNewlines(t *testing.T) {
	var invoked json.RawMessage
	gated := Wrap(passthroughTool(&invoked), &stubClassifier{verdict: "proceed"}, true, nil)

	ctx := tool.WithResumeValue(context.Background(), "ok")
	input, err := json.Marshal(map[string]string{
		"to":      "a@b.com",
		"message": "Dear client,\n\nRegards",
	})
	require.NoError(t, err)

	_, err = gated.Handler(ctx, input)
	require.NoError(t, err)

	var sent map[string]string
	require.NoError(t, json.Unmarshal(invoked, &sent))
	assert.Equal(t, "Dear client,<br><br>Regards", sent["message"])
}

func TestWrap_ChangesReturnsModificationRequest(t *testing.T) {
	gated := Wrap(passthroughTool(nil), &stubClassifier{verdict: "changes"}, false, nil)

	ctx := tool.WithResumeValue(context.Background(), "change the subject to Hello")
	result, err := gated.Handler(ctx, json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.Equal(t,
		"ACTION CANCELLED - User requested modifications: change the subject to Hello. Implement desired modifications and retry.",
		result.Content)
}

func TestWrap_CancelReturnsCancelled(t *testing.T) {
	gated := Wrap(passthroughTool(nil), &stubClassifier{verdict: "cancel"}, false, nil)

	ctx := tool.WithResumeValue(context.Background(), "no, don't")
	result, err := gated.Handler(ctx, json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.Equal(t, resultCancelled, result.Content)
}

func TestWrap_UnrecognizedVerdictCancels(t *testing.T) {
	gated := Wrap(passthroughTool(nil), &stubClassifier{verdict: "gibberish"}, false, nil)

	ctx := tool.WithResumeValue(context.Background(), "hmm")
	result, err := gated.Handler(ctx, json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.Equal(t, resultCancelled, result.Content)
}

func TestWrap_ClassifierFailureBecomesErrorResult(t *testing.T) {
	gated := Wrap(passthroughTool(nil), &stubClassifier{err: errors.New("model down")}, false, nil)

	ctx := tool.WithResumeValue(context.Background(), "yes")
	result, err := gated.Handler(ctx, json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.Equal(t, resultError, result.Content)
}

func TestWrap_BaseFailureBecomesErrorResult(t *testing.T) {
	failing := tool.Tool{
		Name: "send_gmail_message",
		Handler: func(context.Context, json.RawMessage) (*tool.Result, error) {
			return nil, errors.New("gmail unavailable")
		},
	}
	gated := Wrap(failing, &stubClassifier{verdict: "proceed"}, false, nil)

	ctx := tool.WithResumeValue(context.Background(), "yes")
	result, err := gated.Handler(ctx, json.RawMessage(`{}`))

	require.NoError(t, err)
	assert.Equal(t, resultError, result.Content)
}
