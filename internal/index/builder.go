package index

import (
	"context"
	"fmt"

	"pagechat/internal/domain"
)

// BuildIndex splits rawText into overlapping windows, embeds each one, and
// returns the resulting VectorIndex. The build is all-or-nothing: an empty
// document or any failed embedding call aborts with domain.ErrIndexBuild and
// no partial index is ever exposed.
func BuildIndex(ctx context.Context, rawText string, chunkSize, chunkOverlap int, embedder domain.Embedder) (*VectorIndex, error) {
	windows := splitText(rawText, chunkSize, chunkOverlap)
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: document text is empty", domain.ErrIndexBuild)
	}

	chunks := make([]Chunk, 0, len(windows))
	for _, w := range windows {
		vector, err := embedder.Embed(ctx, w.text)
		if err != nil {
			return nil, fmt.Errorf("%w: embed chunk at offset %d: %v", domain.ErrIndexBuild, w.start, err)
		}
		chunks = append(chunks, Chunk{Text: w.text, Start: w.start, Vector: vector})
	}

	return &VectorIndex{chunks: chunks}, nil
}
