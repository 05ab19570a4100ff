package qdrant

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"unicode"
)

// sparseVector is Qdrant's wire form for a sparse named vector. Term
// identity is a 32-bit hash, so unrelated tokens can collide; acceptable
// for keyword recall feeding rank fusion.
type sparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

const (
	docBM25K1      = 1.2
	queryBM25K     = 1.2
	filenameBoost  = 1.5
	maxSparseTerms = 256
)

// stopTokens drops the highest-frequency English function words. Queries
// here are natural-language questions ("what is the policy for ..."), so
// without this the filler words dominate the sparse overlap.
var stopTokens = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "do": {}, "does": {}, "for": {}, "from": {},
	"how": {}, "i": {}, "in": {}, "is": {}, "it": {}, "my": {},
	"of": {}, "on": {}, "or": {}, "our": {}, "the": {}, "their": {},
	"this": {}, "to": {}, "we": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "who": {}, "will": {}, "with": {}, "you": {},
}

func encodeSparseDocument(text string, filename string) sparseVector {
	termFreq := make(map[uint32]float64, 64)
	appendTermFreq(termFreq, tokenizeAlphaNum(text), 1.0)
	appendTermFreq(termFreq, tokenizeAlphaNum(filename), filenameBoost)
	return termFreqToSparse(termFreq, docBM25K1)
}

func encodeSparseQuery(query string) sparseVector {
	termFreq := make(map[uint32]float64, 32)
	appendTermFreq(termFreq, tokenizeAlphaNum(query), 1.0)
	return termFreqToSparse(termFreq, queryBM25K)
}

func appendTermFreq(dst map[uint32]float64, tokens []string, tokenWeight float64) {
	for _, token := range tokens {
		if len(token) < 2 {
			continue
		}
		if _, stop := stopTokens[token]; stop {
			continue
		}
		idx := hashToken(token)
		dst[idx] += tokenWeight
	}
}

type weightedTerm struct {
	index  uint32
	weight float64
}

func termFreqToSparse(tf map[uint32]float64, k float64) sparseVector {
	if len(tf) == 0 {
		return sparseVector{}
	}

	terms := make([]weightedTerm, 0, len(tf))
	for idx, freq := range tf {
		// BM25-style saturation: repeated terms gain weight with
		// diminishing returns, capped near k+1.
		w := (freq * (k + 1.0)) / (freq + k)
		if math.IsNaN(w) || math.IsInf(w, 0) {
			w = 0
		}
		terms = append(terms, weightedTerm{index: idx, weight: w})
	}

	if len(terms) > maxSparseTerms {
		// Keep the heaviest terms when a document overflows the cap.
		sort.Slice(terms, func(i, j int) bool {
			if terms[i].weight != terms[j].weight {
				return terms[i].weight > terms[j].weight
			}
			return terms[i].index < terms[j].index
		})
		terms = terms[:maxSparseTerms]
	}
	// Qdrant expects indices in ascending order.
	sort.Slice(terms, func(i, j int) bool { return terms[i].index < terms[j].index })

	out := sparseVector{
		Indices: make([]uint32, len(terms)),
		Values:  make([]float32, len(terms)),
	}
	for i, term := range terms {
		out.Indices[i] = term.index
		out.Values[i] = float32(term.weight)
	}
	return out
}

func hashToken(token string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum32()
	if sum == 0 {
		return 1
	}
	return sum
}

func tokenizeAlphaNum(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
