package ports

import (
	"context"
	"io"
	"time"

	"github.com/acmecorp/docquery/internal/core/domain"
)

// SemanticIndex performs embedding-similarity search over one collection.
// The category filter is applied natively by the index; results come back
// rank-ordered, rank 0 most similar.
type SemanticIndex interface {
	Query(ctx context.Context, text string, category domain.Category, k int) ([]domain.RetrievedChunk, error)
}

// LexicalIndex performs keyword search. It has no native filtering
// capability: results carry category metadata and callers filter
// client-side. The capability is nullable; a deployment may run without it.
type LexicalIndex interface {
	Query(ctx context.Context, text string) ([]domain.RetrievedChunk, error)
}

// TextGenerator is one synchronous prompt-to-text call. deterministic asks
// the backend for temperature-zero behavior; it is a hint, not a guarantee.
type TextGenerator interface {
	Complete(ctx context.Context, instruction, content string, deterministic bool) (string, error)
}

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events. The subscribe handler
// receives the document id and the publish time; a zero time means the
// producer did not stamp the event.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(ctx context.Context, documentID string, publishedAt time.Time) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits text into semantically usable chunks.
type Chunker interface {
	Split(text string) []string
}

// ChunkIndexer writes document chunks into the retrieval indexes.
type ChunkIndexer interface {
	IndexChunks(ctx context.Context, doc *domain.Document, chunks []string, vectors [][]float32) error
}

// TranscriptStore appends completed turns to the conversation transcript.
type TranscriptStore interface {
	AppendEntry(ctx context.Context, entry domain.TranscriptEntry) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.TranscriptEntry, error)
}
