package domain

import "context"

// Embedder turns text into a fixed-dimension vector. The same embedder must be
// used at index time and query time; mixing models silently degrades retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Prompt is a fully composed generation request: an optional system
// instruction, the prior conversation in order, and the new user message.
type Prompt struct {
	System  string
	History []Turn
	User    string
}

// Generator produces text from a composed prompt in a single call.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
