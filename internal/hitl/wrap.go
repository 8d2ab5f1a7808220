// ABOUTME: Human-in-the-loop tool wrapper: suspends execution for confirmation before invoking.
// ABOUTME: Classifies the human reply into proceed/changes/cancel with one completion call.

package hitl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/docketry/docket-gateway/internal/llm"
	"github.com/docketry/docket-gateway/internal/tool"
)

// Result strings returned to the agent when the base tool is not invoked.
const (
	resultCancelled = "ACTION CANCELLED - User cancelled the operation. Abort the execution of operation."
	resultError     = "ERROR - Action was not completed due to the internal error."
)

// classifierPrompt is the fixed three-way intent prompt. The reply is matched
// by lowercased substring: "proceed", then "changes", anything else cancels.
const classifierPrompt = `Analyze the user's response and determine their intent. Return ONLY one of these exact words:
- 'proceed' if user wants to continue with the action (examples: "send it", "ok", "yes", "proceed", "continue")
- 'changes' if user wants to modify something (examples: "change subject", "modify message", "edit")
- 'cancel' if user wants to stop/cancel the action (examples: "cancel", "stop", "don't send", "abort", "no")

User input: %s`

// Wrap gates a tool behind human confirmation. Invocation without a resume
// value suspends the graph with the proposed input as the interrupt payload.
// On resume the reply is classified; only "proceed" invokes the base tool,
// with the original input. emailFlavored tools get literal newlines in their
// "message" field rewritten to <br> before sending.
func Wrap(base tool.Tool, classifier llm.Completer, emailFlavored bool, logger *slog.Logger) tool.Tool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "hitl", "tool", base.Name)

	wrapped := base
	wrapped.Handler = func(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
		reply, ok := tool.ResumeValue(ctx)
		if !ok {
			return nil, &tool.InterruptError{
				Payload: fmt.Sprintf("Check the data before the execution please: \n\n%s", string(input)),
			}
		}

		result, err := invokeConfirmed(ctx, base, classifier, emailFlavored, input, reply, logger)
		if err != nil {
			// The suspension signal is the graph's pause mechanism and must
			// propagate. Everything else becomes tool output.
			var ie *tool.InterruptError
			if errors.As(err, &ie) {
				return nil, err
			}
			logger.Error("gated tool invocation failed", "error", err)
			return &tool.Result{Content: resultError}, nil
		}
		return result, nil
	}
	return wrapped
}

// invokeConfirmed classifies the human reply and dispatches accordingly.
func invokeConfirmed(
	ctx context.Context,
	base tool.Tool,
	classifier llm.Completer,
	emailFlavored bool,
	input json.RawMessage,
	reply string,
	logger *slog.Logger,
) (*tool.Result, error) {
	verdict, err := classifier.Complete(ctx, fmt.Sprintf(classifierPrompt, reply))
	if err != nil {
		return nil, fmt.Errorf("classifying confirmation reply: %w", err)
	}

	intent := strings.ToLower(strings.TrimSpace(verdict))
	switch {
	case strings.Contains(intent, "proceed"):
		if emailFlavored {
			input = rewriteNewlines(input)
		}
		logger.Info("human approved tool execution")
		return base.Handler(ctx, input)

	case strings.Contains(intent, "changes"):
		logger.Info("human requested modifications")
		return &tool.Result{
			Content: fmt.Sprintf("ACTION CANCELLED - User requested modifications: %s. Implement desired modifications and retry.", reply),
		}, nil

	default:
		logger.Info("human cancelled tool execution")
		return &tool.Result{Content: resultCancelled}, nil
	}
}

// rewriteNewlines replaces literal newlines in the "message" field with
// explicit HTML line breaks so email bodies keep their formatting.
func rewriteNewlines(input json.RawMessage) json.RawMessage {
	msg := gjson.GetBytes(input, "message")
	if !msg.Exists() {
		return input
	}
	rewritten, err := sjson.SetBytes(input, "message", strings.ReplaceAll(msg.String(), "\n", "<br>"))
	if err != nil {
		return input
	}
	return rewritten
}
