package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

// IngestDocumentUseCase accepts an upload into one category, persists the
// source bytes and metadata, and hands processing off to the worker queue.
type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the raw bytes first, then the metadata row, then publishes
// the ingestion event. Ordering matters: a row without bytes would make the
// worker fail, while orphaned bytes are merely garbage.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	category domain.Category,
	body io.Reader,
) (*domain.Document, error) {
	if !category.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", fmt.Errorf("unknown category: %s", category))
	}

	doc := newUploadedDocument(filename, mimeType, category)

	if err := uc.storage.Save(ctx, doc.StoragePath, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}
	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}
	if err := uc.queue.PublishDocumentIngested(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish ingestion event: %w", err)
	}
	return doc, nil
}

func newUploadedDocument(filename, mimeType string, category domain.Category) *domain.Document {
	id := uuid.NewString()
	now := time.Now().UTC()
	return &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: id + "_" + sanitizeFilename(filename),
		Category:    category,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// sanitizeFilename reduces an arbitrary upload name to a storage-safe key
// component: base name only, ASCII letters, digits, dot, dash, underscore.
func sanitizeFilename(name string) string {
	base := strings.ReplaceAll(filepath.Base(name), " ", "_")

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "document.bin"
	}
	return b.String()
}
