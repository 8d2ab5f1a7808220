// ABOUTME: Message-forwarding capability: relay a sub-agent answer to the user verbatim.
// ABOUTME: The supervisor uses it to avoid paraphrasing completed sub-agent output.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/docketry/docket-gateway/internal/tool"
)

const forwardSchema = `{
	"type": "object",
	"properties": {
		"content": {
			"type": "string",
			"description": "The exact message to forward to the user, unchanged."
		}
	},
	"required": ["content"]
}`

// ForwardMessage builds the forward_message tool for the named supervisor.
func ForwardMessage(supervisorName string) tool.Tool {
	return tool.Tool{
		Name: "forward_message",
		Description: fmt.Sprintf(
			"Forward a sub-agent's message to the user verbatim on behalf of %s. Use when the message needs no additions.",
			supervisorName,
		),
		InputSchema: forwardSchema,
		Handler: func(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
			content := gjson.GetBytes(input, "content").String()
			if content == "" {
				return nil, fmt.Errorf("content is required")
			}
			return &tool.Result{Content: content}, nil
		},
	}
}
