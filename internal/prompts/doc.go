// Package prompts loads versioned system prompts for each agent, with
// embedded defaults that can be overridden from a prompts directory on disk.
package prompts
