package app

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func TestCosineSimilarity_Bounds(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 0}, {0, 1}},
		{{1, 2, 3}, {-1, -2, -3}},
		{{0.5, 0.5}, {0.9, 0.1}},
		{{-1, 4}, {2, 2}},
	}
	for _, p := range pairs {
		score := CosineSimilarity(p[0], p[1])
		assert.GreaterOrEqual(t, score, -1.0-1e-9)
		assert.LessOrEqual(t, score, 1.0+1e-9)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 2}, []float32{-1, -2}), 1e-6)
}

func TestCosineSimilarity_DegradesToZero(t *testing.T) {
	assert.Zero(t, CosineSimilarity(nil, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, nil))
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestRankTopK_SortedDescending(t *testing.T) {
	query := []float32{1, 0}
	corpus := []CorpusEntry{
		{DocumentID: 1, ChunkText: "orthogonal", Vector: []float32{0, 1}},
		{DocumentID: 2, ChunkText: "aligned", Vector: []float32{1, 0}},
		{DocumentID: 3, ChunkText: "diagonal", Vector: []float32{1, 1}},
		{DocumentID: 4, ChunkText: "opposite", Vector: []float32{-1, 0}},
	}

	top := RankTopK(query, corpus, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "aligned", top[0].ChunkText)
	assert.Equal(t, "diagonal", top[1].ChunkText)
	assert.Equal(t, "orthogonal", top[2].ChunkText)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Score, top[i].Score)
	}
}

func TestRankTopK_EmptyCorpus(t *testing.T) {
	assert.Nil(t, RankTopK([]float32{1, 0}, nil, 3))
}

func TestRankTopK_KLargerThanCorpus(t *testing.T) {
	corpus := []CorpusEntry{
		{DocumentID: 1, Vector: []float32{1, 0}},
		{DocumentID: 2, Vector: []float32{0, 1}},
	}
	top := RankTopK([]float32{1, 0}, corpus, 10)
	assert.Len(t, top, 2)
}

func TestRankTopK_TiesKeepCorpusOrder(t *testing.T) {
	query := []float32{1, 0}
	corpus := []CorpusEntry{
		{DocumentID: 1, ChunkText: "first", Vector: []float32{2, 0}},
		{DocumentID: 2, ChunkText: "second", Vector: []float32{5, 0}},
		{DocumentID: 3, ChunkText: "third", Vector: []float32{0, 1}},
	}
	top := RankTopK(query, corpus, 2)
	require.Len(t, top, 2)
	// first and second both score exactly 1; stable sort keeps their order
	assert.Equal(t, "first", top[0].ChunkText)
	assert.Equal(t, "second", top[1].ChunkText)
}

func TestRankTopK_CorruptVectorScoresZero(t *testing.T) {
	query := []float32{1, 0}
	corpus := []CorpusEntry{
		{DocumentID: 1, ChunkText: "good", Vector: []float32{1, 0}},
		{DocumentID: 2, ChunkText: "corrupt", Vector: []float32{1, 2, 3}},
	}
	top := RankTopK(query, corpus, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "good", top[0].ChunkText)
	assert.True(t, math.Abs(top[1].Score) < 1e-12)
}
