package qdrant

import (
	"context"

	"github.com/acmecorp/docquery/internal/core/domain"
)

const defaultLexicalLimit = 20

// LexicalIndex answers keyword queries against the sparse named vector.
// Qdrant scores sparse matches unfiltered here; results carry category
// metadata and callers filter on their side.
type LexicalIndex struct {
	client *Client
	limit  int
}

func NewLexicalIndex(client *Client, limit int) *LexicalIndex {
	if limit <= 0 {
		limit = defaultLexicalLimit
	}
	return &LexicalIndex{client: client, limit: limit}
}

func (l *LexicalIndex) Query(ctx context.Context, text string) ([]domain.RetrievedChunk, error) {
	sparse := encodeSparseQuery(text)
	if len(sparse.Indices) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"vector": map[string]any{
			"name":   lexicalVectorName,
			"vector": sparse,
		},
		"limit":        l.limit,
		"with_payload": true,
	}
	return l.client.searchPoints(ctx, reqBody)
}
