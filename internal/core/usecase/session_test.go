package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

// The transcript parameter is the port type on purpose: a typed-nil
// *transcriptFake would slip past the session's nil-store guard.
func newTestSessionManager(gen *generatorFake, semantic *semanticIndexFake, transcript ports.TranscriptStore, cfg SessionConfig) *SessionManager {
	return NewSessionManager(
		NewRephraser(gen),
		NewClassifier(gen, nil),
		NewHybridRetriever(semantic, nil, 60, nil),
		gen,
		gen,
		transcript,
		cfg,
		nil,
	)
}

func TestSessionTurnRemembersExchange(t *testing.T) {
	gen := &generatorFake{
		classifyOut: "HR_Manual",
		rephraseOut: "How many vacation days do employees get?",
		answerOut:   "Fifteen days.",
	}
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{hr("Fifteen vacation days per year.")}}
	transcript := &transcriptFake{}
	mgr := newTestSessionManager(gen, semantic, transcript, SessionConfig{Window: 5, TopK: 5})

	session := mgr.Create("")
	answer, err := session.Handle(context.Background(), "How many vacation days do I get?")
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if answer.Text != "Fifteen days." || answer.Category != domain.CategoryHRManual {
		t.Fatalf("unexpected answer: %+v", answer)
	}

	turns := session.memory.Memory().Turns()
	if len(turns) != 1 {
		t.Fatalf("expected 1 remembered turn, got %d", len(turns))
	}
	// Success turns keep the user's original wording, not the rewrite.
	if turns[0].User != "How many vacation days do I get?" || turns[0].Assistant != "Fifteen days." {
		t.Fatalf("unexpected remembered turn: %+v", turns[0])
	}

	if len(transcript.entries) != 1 {
		t.Fatalf("expected 1 transcript entry, got %d", len(transcript.entries))
	}
	entry := transcript.entries[0]
	if entry.SessionID != session.ID() || entry.Category != domain.CategoryHRManual || entry.Sources != 1 {
		t.Fatalf("unexpected transcript entry: %+v", entry)
	}
}

func TestSessionTurnWithoutTranscriptLog(t *testing.T) {
	gen := &generatorFake{classifyOut: "SOPs", answerOut: "Flush the line first."}
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{sop("Flush the line before restart.")}}
	mgr := newTestSessionManager(gen, semantic, nil, SessionConfig{Window: 5, TopK: 5})

	session := mgr.Create("")
	answer, err := session.Handle(context.Background(), "How do I restart the press?")
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if answer.Text != "Flush the line first." {
		t.Fatalf("unexpected answer: %+v", answer)
	}
	if turns := session.memory.Memory().Turns(); len(turns) != 1 {
		t.Fatalf("expected the turn to be remembered, got %d", len(turns))
	}
}

func TestSessionFirstTurnSkipsRephrasing(t *testing.T) {
	gen := &generatorFake{classifyOut: "SOPs", answerOut: "ok"}
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{sop("steps")}}
	mgr := newTestSessionManager(gen, semantic, nil, SessionConfig{})

	session := mgr.Create("")
	if _, err := session.Handle(context.Background(), "What are the lockout steps?"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if calls := gen.callsOfKind("rephrase"); len(calls) != 0 {
		t.Fatalf("first turn must not be rewritten, got %d rephrase calls", len(calls))
	}
	if semantic.lastText != "What are the lockout steps?" {
		t.Fatalf("expected retrieval on the verbatim first query, got %q", semantic.lastText)
	}
}

func TestSessionEmptyRetrievalShortCircuits(t *testing.T) {
	gen := &generatorFake{classifyOut: "Legal_Contracts"}
	semantic := &semanticIndexFake{} // nothing indexed
	transcript := &transcriptFake{}
	mgr := newTestSessionManager(gen, semantic, transcript, SessionConfig{})

	session := mgr.Create("")
	answer, err := session.Handle(context.Background(), "What does clause 4 say?")
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if answer.Text != domain.NoRelevantDocumentsMessage {
		t.Fatalf("expected fixed no-documents message, got %q", answer.Text)
	}
	if calls := gen.callsOfKind("answer"); len(calls) != 0 {
		t.Fatalf("generation must be bypassed on empty retrieval, got %d calls", len(calls))
	}

	// Null-result turns are remembered too, with the fixed message.
	turns := session.memory.Memory().Turns()
	if len(turns) != 1 || turns[0].Assistant != domain.NoRelevantDocumentsMessage {
		t.Fatalf("expected remembered null-result turn, got %+v", turns)
	}
	if len(transcript.entries) != 1 || transcript.entries[0].Sources != 0 {
		t.Fatalf("expected transcript entry with zero sources, got %+v", transcript.entries)
	}
}

func TestSessionMemoryModeSummaryChangesGenerationInputOnly(t *testing.T) {
	gen := &generatorFake{classifyOut: "SOPs", answerOut: "done", summaryOut: "summary"}
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{sop("steps")}}
	mgr := newTestSessionManager(gen, semantic, nil, SessionConfig{})

	session := mgr.Create(domain.MemoryModeSummary)
	if _, err := session.Handle(context.Background(), "first question"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	calls := gen.callsOfKind("answer")
	if len(calls) != 1 {
		t.Fatalf("expected 1 answer call, got %d", len(calls))
	}
	if !strings.Contains(calls[0].content, "Conversation summary:") {
		t.Fatalf("summary mode must include the summary block, got %q", calls[0].content)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	gen := &generatorFake{classifyOut: "SOPs", rephraseOut: "standalone", answerOut: "ok"}
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{sop("steps")}}
	mgr := newTestSessionManager(gen, semantic, nil, SessionConfig{})

	a := mgr.Create("")
	b := mgr.Create("")
	if a.ID() == b.ID() {
		t.Fatalf("sessions must have distinct ids")
	}

	if _, err := a.Handle(context.Background(), "question for a"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if a.memory.Memory().Len() != 1 {
		t.Fatalf("expected session a to remember its turn")
	}
	if b.memory.Memory().Len() != 0 {
		t.Fatalf("session b memory must stay untouched")
	}
}

func TestSessionWindowBoundHoldsOverManyTurns(t *testing.T) {
	gen := &generatorFake{classifyOut: "SOPs", rephraseOut: "standalone", answerOut: "ok", summaryOut: "sum"}
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{sop("steps")}}
	mgr := newTestSessionManager(gen, semantic, nil, SessionConfig{Window: 2})

	session := mgr.Create("")
	for i := 0; i < 6; i++ {
		if _, err := session.Handle(context.Background(), fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("Handle(%d) error = %v", i, err)
		}
	}
	if got := session.memory.Memory().Len(); got != 2 {
		t.Fatalf("window must cap memory at 2 turns, got %d", got)
	}
	if got := session.memory.Compactions(); got != 4 {
		t.Fatalf("expected 4 compactions, got %d", got)
	}
}

func TestSessionManagerGetAndDelete(t *testing.T) {
	mgr := newTestSessionManager(&generatorFake{}, &semanticIndexFake{}, nil, SessionConfig{})

	session := mgr.Create("")
	got, err := mgr.Get(session.ID())
	if err != nil || got != session {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	if err := mgr.Delete(session.ID()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := mgr.Get(session.ID()); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := mgr.Delete(session.ID()); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on double delete, got %v", err)
	}
}
