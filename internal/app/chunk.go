package app

import "strings"

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 100
)

// Chunk splits text into overlapping segments of at most size characters
// (plus an absorbed tail, see below). It is a pure function of its input.
//
// The window end prefers a sentence or line boundary: if the right edge
// falls strictly inside the text, the nearest '.' or '\n' at or after the
// halfway mark of the window is used instead of a hard cut. The next
// window starts overlap characters before the chosen end. A tail shorter
// than the overlap is absorbed into the final window rather than emitted
// as its own sliver.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < n {
		end := start + size
		if end >= n || n-end <= overlap {
			end = n
		} else {
			if boundary := boundaryBefore(runes, start, end, size); boundary > 0 {
				end = boundary
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= n {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// boundaryBefore searches backward from end for the nearest '.' or
// newline, accepting it only at or after the halfway mark of the window.
// Returns the position just after the boundary character, or 0.
func boundaryBefore(runes []rune, start, end, size int) int {
	min := start + size/2
	for i := end - 1; i >= min; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			return i + 1
		}
	}
	return 0
}
