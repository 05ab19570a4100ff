package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acmecorp/docquery/internal/core/domain"
)

// TranscriptRepository persists the append-only turn transcript. Writes are
// best effort at the call site; the repository itself is strict.
type TranscriptRepository struct {
	db *sql.DB
}

func NewTranscriptRepository(db *sql.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

func (r *TranscriptRepository) AppendEntry(ctx context.Context, entry domain.TranscriptEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO transcript_entries (id, session_id, user_text, standalone, answer, category, sources, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, entry.ID, entry.SessionID, entry.UserText, entry.Standalone, entry.Answer, entry.Category.String(), entry.Sources, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert transcript entry: %w", err)
	}
	return nil
}

func (r *TranscriptRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.TranscriptEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, session_id, user_text, standalone, answer, category, sources, created_at
FROM transcript_entries
WHERE session_id = $1
ORDER BY created_at DESC
LIMIT $2
`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transcript entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TranscriptEntry
	for rows.Next() {
		var entry domain.TranscriptEntry
		var category string
		if err := rows.Scan(
			&entry.ID, &entry.SessionID, &entry.UserText, &entry.Standalone,
			&entry.Answer, &category, &entry.Sources, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transcript entry: %w", err)
		}
		parsed, ok := domain.ParseCategory(category)
		if !ok {
			parsed = domain.DefaultCategory
		}
		entry.Category = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript entries: %w", err)
	}
	return entries, nil
}
