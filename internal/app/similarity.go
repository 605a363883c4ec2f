package app

import (
	"math"
	"sort"
)

const DefaultTopK = 3

// CorpusEntry is one retrievable chunk of a user's corpus, as loaded
// from storage.
type CorpusEntry struct {
	DocumentID uint      `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkText  string    `json:"chunk_text"`
	Vector     []float32 `json:"vector"`
}

// ScoredChunk is a corpus entry paired with its similarity to a query.
type ScoredChunk struct {
	CorpusEntry
	Score float64
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched dimensions or a zero vector score 0 rather than erroring,
// so one corrupt stored embedding cannot fail a whole ranking pass.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankTopK scans the whole corpus and returns the k most similar entries,
// sorted descending. Ties keep original corpus order. Corpora are capped
// well below the point where a brute-force scan would matter.
func RankTopK(query []float32, corpus []CorpusEntry, k int) []ScoredChunk {
	if k <= 0 {
		k = DefaultTopK
	}
	if len(corpus) == 0 {
		return nil
	}

	scored := make([]ScoredChunk, len(corpus))
	for i := range corpus {
		scored[i] = ScoredChunk{
			CorpusEntry: corpus[i],
			Score:       CosineSimilarity(query, corpus[i].Vector),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
