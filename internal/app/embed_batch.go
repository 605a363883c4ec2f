package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultEmbedBatchSize  = 10
	DefaultEmbedBatchDelay = 200 * time.Millisecond
)

// Embedder is the hosted embedding collaborator. EmbedBatch returns one
// vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// BatchResult is the outcome of embedding one batch of chunks. Start is
// the index of the batch's first chunk in the original sequence.
type BatchResult struct {
	BatchIndex int
	Start      int
	Vectors    [][]float32
	Err        error
}

// EmbeddedChunk pairs a surviving chunk with its vector and its original
// position in the document.
type EmbeddedChunk struct {
	Index  int
	Text   string
	Vector []float32
}

// EmbedInBatches partitions chunks into fixed-size batches and calls the
// embedder once per batch, sequentially, with a fixed delay between
// batches to respect upstream rate limits. A failed batch is recorded and
// skipped; its chunks contribute nothing. Results keep original order.
func EmbedInBatches(ctx context.Context, embedder Embedder, chunks []string, batchSize int, delay time.Duration, logger *slog.Logger) []BatchResult {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	var results []BatchResult
	batchIndex := 0
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if batchIndex > 0 && delay > 0 {
			time.Sleep(delay)
		}

		batch := chunks[start:end]
		vectors, err := embedder.EmbedBatch(ctx, batch)
		if err == nil && len(vectors) != len(batch) {
			err = fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}
		if err != nil {
			logger.Warn("embedding batch failed, skipping its chunks",
				"batch", batchIndex,
				"chunks", len(batch),
				"error", err,
			)
			results = append(results, BatchResult{BatchIndex: batchIndex, Start: start, Err: err})
		} else {
			logger.Info("embedding batch succeeded", "batch", batchIndex, "chunks", len(batch))
			results = append(results, BatchResult{BatchIndex: batchIndex, Start: start, Vectors: vectors})
		}
		batchIndex++
	}
	return results
}

// FlattenBatches reduces batch results to the surviving embedded chunks
// in original order. It returns ErrEmbeddingUnavailable only when every
// batch failed; partial failure is not an error.
func FlattenBatches(chunks []string, results []BatchResult) ([]EmbeddedChunk, error) {
	var embedded []EmbeddedChunk
	anySuccess := false
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		anySuccess = true
		for i, vec := range r.Vectors {
			idx := r.Start + i
			embedded = append(embedded, EmbeddedChunk{
				Index:  idx,
				Text:   chunks[idx],
				Vector: vec,
			})
		}
	}
	if len(results) > 0 && !anySuccess {
		return nil, ErrEmbeddingUnavailable
	}
	return embedded, nil
}
