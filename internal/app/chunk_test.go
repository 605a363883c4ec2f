package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_Empty(t *testing.T) {
	assert.Nil(t, Chunk("", 1500, 100))
	assert.Nil(t, Chunk("   \n\t  ", 1500, 100))
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	chunks := Chunk("hello world", 1500, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestChunk_ThreeThousandCharsYieldsTwoChunks(t *testing.T) {
	// 3000 chars, no sentence boundaries: a hard cut at 1500, then the
	// tail absorbed into the second window.
	text := strings.Repeat("abcde fghij klmno pqrst uvwxy ", 100)
	require.Len(t, text, 3000)

	chunks := Chunk(text, 1500, 100)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)
	first := Chunk(text, 1500, 100)
	second := Chunk(text, 1500, 100)
	assert.Equal(t, first, second)
}

func TestChunk_PrefersSentenceBoundary(t *testing.T) {
	// A period placed after the halfway mark should snap the window end.
	text := strings.Repeat("a", 1000) + ". " + strings.Repeat("b", 1000)
	chunks := Chunk(text, 1500, 100)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "."), "first chunk should end at the sentence boundary, got tail %q", chunks[0][len(chunks[0])-10:])
}

func TestChunk_IgnoresBoundaryBeforeHalfwayMark(t *testing.T) {
	// The only period sits well before the 50% mark, so the cut is hard.
	text := strings.Repeat("a", 100) + ". " + strings.Repeat("b", 3000)
	chunks := Chunk(text, 1500, 100)
	require.NotEmpty(t, chunks)
	assert.False(t, strings.HasSuffix(chunks[0], "."))
}

func TestChunk_Coverage(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur. ", 300)
	size, overlap := 1500, 100
	chunks := Chunk(text, size, overlap)
	require.NotEmpty(t, chunks)

	total := 0
	for _, c := range chunks {
		require.NotEmpty(t, strings.TrimSpace(c))
		total += len(c)
	}
	// Overlap-removed reconstruction stays within overlap*chunkCount of
	// the original length (trimming accounts for the slack).
	unique := total - overlap*(len(chunks)-1)
	tolerance := overlap * len(chunks)
	assert.InDelta(t, len(text), unique, float64(tolerance))
}

func TestChunk_LargeInputProducesManyChunks(t *testing.T) {
	text := strings.Repeat("x", 200000)
	chunks := Chunk(text, 1500, 100)
	assert.Greater(t, len(chunks), 50)
}
