// Package llm abstracts chat-completion model access.
//
// Client is the provider-neutral interface the rest of the system programs
// against: a transcript plus tool definitions in, an assistant message with
// optional tool calls out. AnthropicClient implements it over the Anthropic
// Messages API, translating between the internal message shape and the SDK's
// content blocks. Completer is the narrower single-prompt interface used for
// auxiliary calls like summarization and reply classification.
package llm
