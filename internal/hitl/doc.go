// Package hitl gates tool execution behind human confirmation.
//
// Wrap decorates a tool so its first invocation suspends with the proposed
// input instead of executing. When the human replies, a classifier model maps
// the free-text reply to one of three verdicts: proceed (execute as
// proposed), changes (re-suspend with the edited input), or cancel (drop the
// action). Email-shaped inputs get their message body's newlines rewritten to
// HTML breaks before sending.
package hitl
