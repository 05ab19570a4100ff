package usecase

import (
	"sort"

	"github.com/acmecorp/docquery/internal/core/domain"
)

// rrfK is the Reciprocal Rank Fusion constant. A chunk at 0-based rank r in
// one list contributes 1/(rrfK+r+1) to its fused score.
const rrfK = 60

type fusedCandidate struct {
	chunk domain.RetrievedChunk
	score float64
	order int
}

// fuseRRF merges the vector-ranked and lexical-ranked lists into one ranking.
// Chunk identity is exact text content; a chunk present in both lists
// accumulates both contributions. Ties break by the order in which distinct
// chunks were first encountered, with the vector list processed before the
// lexical list, so the result is deterministic and stable.
func fuseRRF(vectorList, lexicalList []domain.RetrievedChunk, k int) []domain.RetrievedChunk {
	if k <= 0 {
		k = rrfK
	}

	acc := make(map[string]*fusedCandidate, len(vectorList)+len(lexicalList))
	next := 0
	addList := func(chunks []domain.RetrievedChunk) {
		for rank, chunk := range chunks {
			candidate, seen := acc[chunk.Text]
			if !seen {
				candidate = &fusedCandidate{chunk: chunk, order: next}
				acc[chunk.Text] = candidate
				next++
			}
			candidate.score += 1.0 / float64(k+rank+1)
		}
	}

	addList(vectorList)
	addList(lexicalList)

	out := make([]*fusedCandidate, 0, len(acc))
	for _, c := range acc {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].order < out[j].order
	})

	fused := make([]domain.RetrievedChunk, 0, len(out))
	for _, c := range out {
		chunk := c.chunk
		chunk.Score = c.score
		fused = append(fused, chunk)
	}
	return fused
}

func trimCandidates(chunks []domain.RetrievedChunk, limit int) []domain.RetrievedChunk {
	if limit <= 0 || len(chunks) <= limit {
		return chunks
	}
	return chunks[:limit]
}
