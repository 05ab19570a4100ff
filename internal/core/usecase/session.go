package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

const answerInstructionTemplate = `You are a helpful assistant for Acme Corp.
Answer the user's question using ONLY the provided context from the %s documents.
If the answer is not in the context, say "I don't know."`

// SessionConfig carries the per-session constants supplied at construction.
type SessionConfig struct {
	Window     int
	TopK       int
	MemoryMode domain.MemoryMode
}

func (c SessionConfig) normalize() SessionConfig {
	if c.Window <= 0 {
		c.Window = domain.DefaultMemoryWindow
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	if c.MemoryMode == "" {
		c.MemoryMode = domain.MemoryModeWindow
	}
	return c
}

// ConversationSession orchestrates one request/response cycle:
// rephrase, classify, retrieve, generate, remember. Turns are processed to
// completion one at a time; the session serializes concurrent callers.
type ConversationSession struct {
	id         string
	rephraser  *Rephraser
	classifier *Classifier
	retriever  *HybridRetriever
	generator  ports.TextGenerator
	memory     *MemoryManager
	transcript ports.TranscriptStore
	cfg        SessionConfig
	logger     *slog.Logger

	mu sync.Mutex
}

func NewConversationSession(
	rephraser *Rephraser,
	classifier *Classifier,
	retriever *HybridRetriever,
	generator ports.TextGenerator,
	summarizer ports.TextGenerator,
	transcript ports.TranscriptStore,
	cfg SessionConfig,
	logger *slog.Logger,
) *ConversationSession {
	cfg = cfg.normalize()
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationSession{
		id:         uuid.NewString(),
		rephraser:  rephraser,
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		memory:     NewMemoryManager(cfg.Window, summarizer),
		transcript: transcript,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *ConversationSession) ID() string { return s.id }

// MemoryMode reports the configured presentation mode.
func (s *ConversationSession) MemoryMode() domain.MemoryMode { return s.cfg.MemoryMode }

// Compactions reports how many turns this session has folded into its
// running summary.
func (s *ConversationSession) Compactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory.Compactions()
}

// Handle runs one full turn and returns the answer paired with the category
// the query was routed to. Memory stays untouched when generation fails
// mid-turn: no partial turn is ever appended.
func (s *ConversationSession) Handle(ctx context.Context, userQuery string) (*domain.Answer, error) {
	userQuery = strings.TrimSpace(userQuery)
	if userQuery == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "handle turn", fmt.Errorf("query is empty"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	standalone, err := s.rephraser.Rephrase(ctx, userQuery, s.memory.Memory())
	if err != nil {
		return nil, err
	}

	category, err := s.classifier.Classify(ctx, standalone)
	if err != nil {
		return nil, err
	}

	chunks, err := s.retriever.Search(ctx, standalone, category, s.cfg.TopK)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		// Null-result turns are remembered with the standalone question and
		// the fixed message, bypassing generation entirely.
		if err := s.memory.Append(ctx, domain.Turn{User: standalone, Assistant: domain.NoRelevantDocumentsMessage}); err != nil {
			return nil, err
		}
		s.record(ctx, userQuery, standalone, domain.NoRelevantDocumentsMessage, category, 0)
		return &domain.Answer{Text: domain.NoRelevantDocumentsMessage, Category: category}, nil
	}

	raw, err := s.generator.Complete(ctx, fmt.Sprintf(answerInstructionTemplate, category), s.answerContext(standalone, chunks), false)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGenerationUnavailable, "generate answer", err)
	}
	answerText := strings.TrimSpace(raw)

	if err := s.memory.Append(ctx, domain.Turn{User: userQuery, Assistant: answerText}); err != nil {
		return nil, err
	}
	s.record(ctx, userQuery, standalone, answerText, category, len(chunks))

	return &domain.Answer{Text: answerText, Category: category, Sources: chunks}, nil
}

// answerContext assembles the generation input: fused chunks in rank order,
// plus the conversational state selected by the memory mode. The mode only
// changes what the generation step sees.
func (s *ConversationSession) answerContext(standalone string, chunks []domain.RetrievedChunk) string {
	var b strings.Builder

	if s.cfg.MemoryMode == domain.MemoryModeSummary {
		summary := s.memory.Memory().Summary()
		if summary == "" {
			summary = noSummaryPlaceholder
		}
		b.WriteString("Conversation summary:\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	turns := s.memory.Memory().Turns()
	if len(turns) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, t := range turns {
			b.WriteString("user: ")
			b.WriteString(t.User)
			b.WriteString("\nassistant: ")
			b.WriteString(t.Assistant)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Context:\n")
	for _, chunk := range chunks {
		b.WriteString(chunk.Text)
		b.WriteString("\n\n")
	}

	b.WriteString("Question:\n")
	b.WriteString(standalone)
	return b.String()
}

// record appends the completed turn to the transcript. The transcript is an
// audit log: failures are logged and never affect the turn outcome.
func (s *ConversationSession) record(ctx context.Context, userText, standalone, answer string, category domain.Category, sources int) {
	if s.transcript == nil {
		return
	}
	entry := domain.TranscriptEntry{
		ID:         uuid.NewString(),
		SessionID:  s.id,
		UserText:   userText,
		Standalone: standalone,
		Answer:     answer,
		Category:   category,
		Sources:    sources,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.transcript.AppendEntry(ctx, entry); err != nil {
		s.logger.Warn("transcript append failed", "session_id", s.id, "error", err)
	}
}
