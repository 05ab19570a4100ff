package qdrant

import (
	"context"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

// SemanticIndex answers embedding-similarity queries against the dense
// named vector. The category filter is pushed down to Qdrant so only
// points from the requested partition are scored.
type SemanticIndex struct {
	client   *Client
	embedder ports.Embedder
}

func NewSemanticIndex(client *Client, embedder ports.Embedder) *SemanticIndex {
	return &SemanticIndex{client: client, embedder: embedder}
}

func (s *SemanticIndex) Query(ctx context.Context, text string, category domain.Category, k int) ([]domain.RetrievedChunk, error) {
	queryVector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]any{
		"vector": map[string]any{
			"name":   denseVectorName,
			"vector": queryVector,
		},
		"limit":        k,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key": "category",
					"match": map[string]any{
						"value": category.String(),
					},
				},
			},
		},
	}
	return s.client.searchPoints(ctx, reqBody)
}
