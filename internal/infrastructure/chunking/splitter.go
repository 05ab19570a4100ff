// Package chunking cuts extracted document text into retrieval-sized
// pieces before embedding.
package chunking

import (
	"strings"
	"unicode"
)

const (
	DefaultChunkSize = 300
	DefaultOverlap   = 50

	// How far back from the window end Split will look for whitespace
	// before giving up and cutting mid-word.
	boundaryLookback = 24
)

// Splitter produces overlapping fixed-size windows. Sizes are in runes so
// multibyte text never splits mid-character, and both ends of a window
// prefer a whitespace boundary so embeddings never see half a word.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	start := 0
	for {
		end := start + s.ChunkSize
		if end >= len(runes) {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				out = append(out, chunk)
			}
			return out
		}
		end = softBoundary(runes, start, end)
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			out = append(out, chunk)
		}
		start = s.nextStart(runes, start, end)
	}
}

// softBoundary walks back from end looking for whitespace to cut at, giving
// up after boundaryLookback runes.
func softBoundary(runes []rune, start, end int) int {
	limit := end - boundaryLookback
	if limit < start+1 {
		limit = start + 1
	}
	for i := end; i > limit; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}

// nextStart rewinds Overlap runes from the previous cut, then advances to
// the next word start so no chunk opens mid-word. It never moves past end,
// so consecutive chunks always cover the full text.
func (s *Splitter) nextStart(runes []rune, prev, end int) int {
	next := end - s.Overlap
	if next <= prev {
		next = prev + 1
	}
	for next < end && !unicode.IsSpace(runes[next-1]) {
		next++
	}
	return next
}
