package usecase

import (
	"context"
	"log/slog"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

// HybridRetriever queries the semantic and lexical indexes for one category
// and fuses the two rankings with Reciprocal Rank Fusion.
//
// The lexical index is a nullable capability: when absent the retriever
// degrades to semantic-only ranking. A lexical failure at query time also
// degrades rather than failing the request; only the semantic path is
// load-bearing.
type HybridRetriever struct {
	semantic ports.SemanticIndex
	lexical  ports.LexicalIndex
	fusionK  int
	logger   *slog.Logger
}

func NewHybridRetriever(semantic ports.SemanticIndex, lexical ports.LexicalIndex, fusionK int, logger *slog.Logger) *HybridRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	if fusionK <= 0 {
		fusionK = rrfK
	}
	if lexical == nil {
		logger.Info("lexical index absent, hybrid search degrades to semantic-only")
	}
	return &HybridRetriever{
		semantic: semantic,
		lexical:  lexical,
		fusionK:  fusionK,
		logger:   logger,
	}
}

// Search returns at most k fused chunks for the query within the category.
// An empty result is a terminal state, not an error; the caller interprets
// it as "no relevant documents".
func (r *HybridRetriever) Search(ctx context.Context, query string, category domain.Category, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = 5
	}

	vectorList, err := r.semantic.Query(ctx, query, category, k)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "semantic search", err)
	}

	lexicalList := r.lexicalCandidates(ctx, query, category)

	fused := fuseRRF(vectorList, lexicalList, r.fusionK)
	return trimCandidates(fused, k), nil
}

// lexicalCandidates queries the lexical index unfiltered (it has no native
// filtering capability) and keeps only chunks tagged with the target
// category, preserving the engine's relative order.
func (r *HybridRetriever) lexicalCandidates(ctx context.Context, query string, category domain.Category) []domain.RetrievedChunk {
	if r.lexical == nil {
		return nil
	}

	candidates, err := r.lexical.Query(ctx, query)
	if err != nil {
		r.logger.Warn("lexical search unavailable, using semantic results only", "error", err)
		return nil
	}

	out := make([]domain.RetrievedChunk, 0, len(candidates))
	for _, chunk := range candidates {
		if chunk.Category == category {
			out = append(out, chunk)
		}
	}
	return out
}
