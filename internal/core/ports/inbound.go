package ports

import (
	"context"
	"io"

	"github.com/acmecorp/docquery/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, category domain.Category, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document
// processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// QueryService is the inbound contract for a stateless one-shot query:
// classify, retrieve, answer, no conversational memory.
type QueryService interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}
