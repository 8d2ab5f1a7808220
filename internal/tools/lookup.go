// ABOUTME: Shared database-lookup capability: resolve a client's email by name.
// ABOUTME: Implements the exact disambiguation policy for ambiguous name matches.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docketry/docket-gateway/internal/auth"
	"github.com/docketry/docket-gateway/internal/clientdb"
	"github.com/docketry/docket-gateway/internal/tool"
)

const lookupSchema = `{
	"type": "object",
	"properties": {
		"client_full_name": {
			"type": "string",
			"description": "The client's full name, first and last."
		},
		"birthdate": {
			"type": "string",
			"description": "The client's birthdate in YYYY-MM-DD format, if known. Empty string otherwise."
		}
	},
	"required": ["client_full_name"]
}`

type lookupInput struct {
	ClientFullName string `json:"client_full_name"`
	Birthdate      string `json:"birthdate"`
}

// EmailLookup builds the get_email_from_database tool over the client
// directory. Lookup problems are returned as tool output text, never as
// errors: the agent reads the message and reacts within the conversation.
func EmailLookup(dir *clientdb.Directory, logger *slog.Logger) tool.Tool {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tools", "tool", "get_email_from_database")

	return tool.Tool{
		Name:        "get_email_from_database",
		Description: "Retrieve client email from database by name and optional birthdate.",
		InputSchema: lookupSchema,
		Handler: func(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
			var in lookupInput
			if err := json.Unmarshal(input, &in); err != nil {
				return &tool.Result{Content: "Error: Invalid input for client lookup."}, nil
			}

			user := auth.UserFromContext(ctx)
			if user == nil {
				return &tool.Result{Content: "Error: No user session for client lookup."}, nil
			}

			first, last, err := ParseFullName(in.ClientFullName)
			if err != nil {
				return &tool.Result{Content: err.Error()}, nil
			}

			content, err := resolveEmail(ctx, dir, user.UserID, first, last, in.ClientFullName, in.Birthdate)
			if err != nil {
				logger.Error("client lookup failed", "error", err)
				return &tool.Result{Content: "Error: Failed to retrieve email from database. Please try again."}, nil
			}
			return &tool.Result{Content: content}, nil
		},
	}
}

// resolveEmail applies the disambiguation policy:
// no match -> not found; one match -> that email; several matches without a
// birthdate -> ask for one; several matches even with the birthdate -> ask to
// verify the details.
func resolveEmail(ctx context.Context, dir *clientdb.Directory, userID, first, last, fullName, birthdate string) (string, error) {
	clients, err := dir.FindClients(ctx, userID, first, last, "")
	if err != nil {
		return "", err
	}

	switch {
	case len(clients) == 0:
		return fmt.Sprintf("Error: No client found with name %s.", fullName), nil
	case len(clients) == 1:
		return clients[0].Email, nil
	case birthdate == "":
		return fmt.Sprintf("Error: Multiple clients found with name %s. Please specify the client's birthdate.", fullName), nil
	}

	filtered, err := dir.FindClients(ctx, userID, first, last, birthdate)
	if err != nil {
		return "", err
	}
	switch len(filtered) {
	case 0:
		return fmt.Sprintf("Error: No client found with name %s.", fullName), nil
	case 1:
		return filtered[0].Email, nil
	default:
		return fmt.Sprintf("Error: Multiple clients found with name %s and that birthdate. Please verify the client details.", fullName), nil
	}
}

// ParseFullName splits a full name into first and last name. At least two
// name parts are required.
func ParseFullName(fullName string) (first, last string, err error) {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) < 2 {
		return "", "", fmt.Errorf("Error: Invalid full name format. Please provide first and last name.")
	}
	return parts[0], parts[1], nil
}
