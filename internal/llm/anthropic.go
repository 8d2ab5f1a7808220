// ABOUTME: Anthropic implementation of the Client interface using the official SDK.
// ABOUTME: Converts between transcript messages and the SDK's content-block model.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// DefaultModel is used when the config names no model.
	DefaultModel = "claude-sonnet-4-5-20250929"
	// DefaultMaxTokens caps a single response.
	DefaultMaxTokens = 4096
)

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

// NewAnthropicClient creates a client for the given API key and model.
// An empty model selects DefaultModel.
func NewAnthropicClient(apiKey, model string, logger *slog.Logger) *AnthropicClient {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger.With("component", "llm"),
	}
}

// Chat sends a conversation to the Messages API and returns the normalized response.
func (c *AnthropicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	sdkMessages := convertMessages(req.Messages)
	if len(sdkMessages) == 0 {
		return nil, fmt.Errorf("no messages to send")
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		Messages:  sdkMessages,
		MaxTokens: int64(maxTokens),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages call: %w", err)
	}

	resp := convertResponse(message)
	c.logger.Debug("chat completed",
		"model", c.model,
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp, nil
}

// Complete runs a single-prompt completion with no tools.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.Chat(ctx, &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// convertMessages maps transcript messages into SDK message params. System
// messages are excluded here; they travel in the params.System field.
func convertMessages(messages []Message) []anthropic.MessageParam {
	var sdkMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			if msg.Content != "" {
				sdkMessages = append(sdkMessages, anthropic.NewUserMessage(
					anthropic.NewTextBlock(msg.Content),
				))
			}

		case RoleAssistant:
			var content []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				content = append(content, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input any
				if len(tc.Input) > 0 {
					input = json.RawMessage(tc.Input)
				} else {
					input = map[string]any{}
				}
				content = append(content, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(content) > 0 {
				sdkMessages = append(sdkMessages, anthropic.NewAssistantMessage(content...))
			}

		case RoleTool:
			sdkMessages = append(sdkMessages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolUseID, msg.Content, msg.IsError),
			))
		}
	}

	return sdkMessages
}

// convertTools maps tool definitions into SDK tool params. Input schemas are
// already JSON Schema strings, so they unmarshal directly.
func convertTools(tools []ToolDef) []anthropic.ToolUnionParam {
	sdkTools := make([]anthropic.ToolParam, len(tools))
	for i, t := range tools {
		sdkTools[i] = anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
		}
		if t.InputSchema != "" {
			var schema anthropic.ToolInputSchemaParam
			if err := json.Unmarshal([]byte(t.InputSchema), &schema); err == nil {
				sdkTools[i].InputSchema = schema
			}
		}
	}

	unions := make([]anthropic.ToolUnionParam, len(sdkTools))
	for i := range sdkTools {
		unions[i] = anthropic.ToolUnionParam{OfTool: &sdkTools[i]}
	}
	return unions
}

// convertResponse normalizes an SDK message into a ChatResponse.
func convertResponse(message *anthropic.Message) *ChatResponse {
	resp := &ChatResponse{
		StopReason: string(message.StopReason),
		Usage: Usage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
		},
	}

	for _, block := range message.Content {
		switch block.Type {
		case "text":
			resp.Content += block.Text
		case "tool_use":
			input := json.RawMessage(block.Input)
			if len(input) == 0 {
				input = json.RawMessage(`{}`)
			}
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}

	return resp
}
