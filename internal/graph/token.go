// ABOUTME: Token counting for context management using tiktoken cl100k_base.
// ABOUTME: Falls back to character-based estimation when the encoder is unavailable.

package graph

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/docketry/docket-gateway/internal/llm"
)

// perMessageOverhead approximates the formatting tokens each message adds
// beyond its content.
const perMessageOverhead = 4

// TokenCounter provides token counting for summarization thresholds.
type TokenCounter struct {
	encoder *tiktoken.Tiktoken
	mu      sync.Mutex
}

var (
	globalTokenCounter *TokenCounter
	counterInitOnce    sync.Once
)

// GetTokenCounter returns the process-wide token counter.
func GetTokenCounter() *TokenCounter {
	counterInitOnce.Do(func() {
		tkm, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			// Encoder data unavailable; estimation keeps the ceiling working.
			globalTokenCounter = &TokenCounter{}
			return
		}
		globalTokenCounter = &TokenCounter{encoder: tkm}
	})
	return globalTokenCounter
}

// Count returns the token count for the given text.
func (tc *TokenCounter) Count(text string) int {
	if tc.encoder == nil {
		return len(text) / 4
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.encoder.Encode(text, nil, nil))
}

// CountMessages returns the token count for a transcript, including tool
// call inputs and per-message overhead.
func (tc *TokenCounter) CountMessages(messages []llm.Message) int {
	total := 0
	for _, msg := range messages {
		total += tc.Count(msg.Content) + perMessageOverhead
		for _, call := range msg.ToolCalls {
			total += tc.Count(call.Name) + tc.Count(string(call.Input))
		}
	}
	return total
}
