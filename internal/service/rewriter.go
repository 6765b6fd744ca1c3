package service

import (
	"context"
	"fmt"
	"strings"

	"pagechat/internal/domain"
)

const rewriteInstruction = "Generate a standalone search query based on the conversation above. Return only the query."

// QueryRewriter resolves a context-dependent follow-up ("what about its
// pricing?") into a standalone search query using the conversation so far.
// With no history the model sees only the message itself, so the query
// degrades to roughly the message unchanged.
type QueryRewriter struct {
	generator domain.Generator
}

// NewQueryRewriter creates a query rewriter on top of generator.
func NewQueryRewriter(generator domain.Generator) *QueryRewriter {
	return &QueryRewriter{generator: generator}
}

// Rewrite produces the search query for message given the prior history.
// A provider fault is terminal for the turn; there is no fallback to the raw
// message.
func (r *QueryRewriter) Rewrite(ctx context.Context, history []domain.Turn, message string) (string, error) {
	prompt := domain.Prompt{
		History: history,
		User:    message + "\n\n" + rewriteInstruction,
	}

	query, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: rewrite query: %v", domain.ErrGeneration, err)
	}
	return strings.TrimSpace(query), nil
}
