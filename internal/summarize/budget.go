package summarize

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Budget enforces a token limit on prompts sent to the LLM.
type Budget struct {
	tokenizer *tiktoken.Tiktoken
	maxTokens int
}

// NewBudget creates a token budget for the given model. maxTokens is the
// number of tokens available for the prompt after reserving room for the
// model's response.
func NewBudget(model string, maxTokens int) (*Budget, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Budget{tokenizer: enc, maxTokens: maxTokens}, nil
}

// Count returns the token count for a string.
func (b *Budget) Count(text string) int {
	return len(b.tokenizer.Encode(text, nil, nil))
}

// FitRecent joins blocks with blank lines, dropping the oldest blocks
// until the result fits within the budget. A single oversized block is
// kept as-is rather than returning an empty prompt.
func (b *Budget) FitRecent(blocks []string) string {
	used := 0
	start := len(blocks)
	for i := len(blocks) - 1; i >= 0; i-- {
		cost := b.Count(blocks[i]) + 2
		if used+cost > b.maxTokens && start < len(blocks) {
			break
		}
		used += cost
		start = i
	}
	return strings.Join(blocks[start:], "\n\n")
}
