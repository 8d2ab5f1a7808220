// Package chatws serves the chat WebSocket endpoint.
//
// The wire format is line-oriented text frames with a fixed set of prefixes:
// "User: " echoes input, "Agent: " carries the final answer, "Agent
// [UPDATE]: " carries intermediate progress, "Agent [INTERRUPT]: " requests
// human confirmation, and "Error: " reports failures. Clients authenticate
// with a JWT passed as the token query parameter; a bad token closes the
// connection with a policy-violation status before any frame is exchanged.
//
// After an interrupt frame the next client frame is treated as the reply to
// the pending confirmation rather than a new user message.
package chatws
