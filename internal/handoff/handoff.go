// ABOUTME: Handoff tool factory: lets one agent transfer a scoped task to another.
// ABOUTME: The scoped message carries only the task description, never conversation history.

package handoff

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docketry/docket-gateway/internal/auth"
	"github.com/docketry/docket-gateway/internal/tool"
)

const inputSchema = `{
	"type": "object",
	"properties": {
		"task_description": {
			"type": "string",
			"description": "Description of what the next agent should do, including all of the relevant context."
		},
		"learned_user_preferences": {
			"type": "string",
			"description": "Additional instructions for the next agent ONLY IF you learned something from the user's typical actions concerning the tasks related to next agent's expertise"
		}
	},
	"required": ["task_description"]
}`

// Options configures an agent handoff tool.
type Options struct {
	// Description overrides the default "Ask <agent> for help." text.
	Description string
	// SendFullName appends the session user's full name to the scoped task,
	// for agents that personalize outgoing artifacts (email sender name).
	SendFullName bool
}

// ToolName returns the capability name for handing off to the given agent.
func ToolName(agentName string) string {
	return "assign_task_to_" + agentName
}

type handoffInput struct {
	TaskDescription        string `json:"task_description"`
	LearnedUserPreferences string `json:"learned_user_preferences"`
}

// New builds a handoff tool bound to the target agent. Invoking it returns a
// control result that appends an acknowledgement to the shared transcript and
// transfers control to the target with the scoped message as its sole input.
func New(agentName string, opts Options) tool.Tool {
	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Ask %s for help.", agentName)
	}

	return tool.Tool{
		Name:        ToolName(agentName),
		Description: description,
		InputSchema: inputSchema,
		Handler: func(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
			var in handoffInput
			if err := json.Unmarshal(input, &in); err != nil {
				return nil, fmt.Errorf("executing handoff to %s: %w", agentName, err)
			}
			if in.TaskDescription == "" {
				return nil, fmt.Errorf("executing handoff to %s: task_description is required", agentName)
			}

			content := "Task: " + in.TaskDescription
			if opts.SendFullName {
				if user := auth.UserFromContext(ctx); user != nil && user.FullName != "" {
					content += "\nUser fullname: " + user.FullName
				}
			}
			if in.LearnedUserPreferences != "" {
				content += "\nUser Preferences & Learned Patterns: " + in.LearnedUserPreferences +
					"\nPlease incorporate these preferences into your response."
			}

			return &tool.Result{
				Handoff: &tool.Handoff{
					Target: agentName,
					Input:  content,
					Ack:    "Successfully transferred to " + agentName,
				},
			}, nil
		},
	}
}
