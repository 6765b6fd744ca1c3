package index

import (
	"math"
	"sort"
)

// Chunk is a contiguous slice of source text plus its embedding and the rune
// offset where it starts. Immutable once created; owned by its VectorIndex.
type Chunk struct {
	Text   string
	Start  int
	Vector []float32
}

// VectorIndex is an in-memory nearest-neighbor store over embedded chunks,
// scoped to one session. Built once at session creation and never mutated
// afterward, so reads need no locking.
type VectorIndex struct {
	chunks []Chunk
}

// Len returns the number of indexed chunks.
func (ix *VectorIndex) Len() int {
	return len(ix.chunks)
}

// Query returns up to topK chunks ranked by descending cosine similarity to
// vector. Ties keep original chunk order. Querying an empty index returns an
// empty result, not an error.
func (ix *VectorIndex) Query(vector []float32, topK int) []Chunk {
	if len(ix.chunks) == 0 || topK <= 0 {
		return nil
	}

	type scored struct {
		chunk Chunk
		score float64
	}
	results := make([]scored, len(ix.chunks))
	for i, c := range ix.chunks {
		results[i] = scored{chunk: c, score: cosineSimilarity(c.Vector, vector)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if topK > len(results) {
		topK = len(results)
	}
	out := make([]Chunk, topK)
	for i := 0; i < topK; i++ {
		out[i] = results[i].chunk
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
