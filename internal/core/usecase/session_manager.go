package usecase

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

// SessionManager creates and tracks conversation sessions. Each session owns
// its memory exclusively; the manager only guards the registry map, so
// independent sessions run concurrently without sharing mutable state.
type SessionManager struct {
	rephraser  *Rephraser
	classifier *Classifier
	retriever  *HybridRetriever
	generator  ports.TextGenerator
	summarizer ports.TextGenerator
	transcript ports.TranscriptStore
	defaults   SessionConfig
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*ConversationSession
}

func NewSessionManager(
	rephraser *Rephraser,
	classifier *Classifier,
	retriever *HybridRetriever,
	generator ports.TextGenerator,
	summarizer ports.TextGenerator,
	transcript ports.TranscriptStore,
	defaults SessionConfig,
	logger *slog.Logger,
) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		rephraser:  rephraser,
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		summarizer: summarizer,
		transcript: transcript,
		defaults:   defaults.normalize(),
		logger:     logger,
	}
}

// Create starts a new session. A zero-value mode falls back to the
// configured default presentation mode.
func (m *SessionManager) Create(mode domain.MemoryMode) *ConversationSession {
	cfg := m.defaults
	if mode != "" {
		cfg.MemoryMode = mode
	}
	session := NewConversationSession(
		m.rephraser,
		m.classifier,
		m.retriever,
		m.generator,
		m.summarizer,
		m.transcript,
		cfg,
		m.logger,
	)

	m.mu.Lock()
	if m.sessions == nil {
		m.sessions = make(map[string]*ConversationSession)
	}
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	return session
}

func (m *SessionManager) Get(id string) (*ConversationSession, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", fmt.Errorf("id=%s", id))
	}
	return session, nil
}

// Delete drops the session from the registry; its memory dies with it.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "delete session", fmt.Errorf("id=%s", id))
	}
	delete(m.sessions, id)
	return nil
}
