package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/acmecorp/docquery/internal/core/domain"
)

func TestSearchSemanticErrorIsTerminal(t *testing.T) {
	semantic := &semanticIndexFake{err: errors.New("collection missing")}
	lexical := &lexicalIndexFake{chunks: []domain.RetrievedChunk{sop("ignored")}}
	retriever := NewHybridRetriever(semantic, lexical, 60, nil)

	_, err := retriever.Search(context.Background(), "lockout procedure", domain.CategorySOPs, 5)
	if !domain.IsKind(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestSearchLexicalErrorDegradesToSemanticOnly(t *testing.T) {
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{sop("lockout steps")}}
	lexical := &lexicalIndexFake{err: errors.New("sparse index offline")}
	retriever := NewHybridRetriever(semantic, lexical, 60, nil)

	chunks, err := retriever.Search(context.Background(), "lockout procedure", domain.CategorySOPs, 5)
	if err != nil {
		t.Fatalf("Search() error = %v, lexical failure must degrade", err)
	}
	if len(chunks) != 1 || chunks[0].Text != "lockout steps" {
		t.Fatalf("expected semantic results preserved, got %+v", chunks)
	}
	if lexical.calls != 1 {
		t.Fatalf("expected the lexical index to be tried once, got %d", lexical.calls)
	}
}

func TestSearchFiltersLexicalResultsByCategory(t *testing.T) {
	semantic := &semanticIndexFake{}
	lexical := &lexicalIndexFake{chunks: []domain.RetrievedChunk{
		hr("vacation accrual"),
		sop("machine startup"),
		hr("parental leave"),
	}}
	retriever := NewHybridRetriever(semantic, lexical, 60, nil)

	chunks, err := retriever.Search(context.Background(), "leave policy", domain.CategoryHRManual, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 HR chunks after client-side filtering, got %d", len(chunks))
	}
	if chunks[0].Text != "vacation accrual" || chunks[1].Text != "parental leave" {
		t.Fatalf("lexical relative order must be preserved, got %+v", chunks)
	}
}

func TestSearchWithoutLexicalIndexNeverCallsIt(t *testing.T) {
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{sop("procedure")}}
	retriever := NewHybridRetriever(semantic, nil, 60, nil)

	chunks, err := retriever.Search(context.Background(), "procedure", domain.CategorySOPs, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected semantic-only result, got %+v", chunks)
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	semantic := &semanticIndexFake{chunks: []domain.RetrievedChunk{
		sop("one"), sop("two"), sop("three"), sop("four"),
	}}
	retriever := NewHybridRetriever(semantic, nil, 60, nil)

	chunks, err := retriever.Search(context.Background(), "steps", domain.CategorySOPs, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "one" || chunks[1].Text != "two" {
		t.Fatalf("expected top-ranked chunks kept, got %+v", chunks)
	}
}

func TestSearchEmptyFusionIsNotAnError(t *testing.T) {
	retriever := NewHybridRetriever(&semanticIndexFake{}, &lexicalIndexFake{}, 60, nil)

	chunks, err := retriever.Search(context.Background(), "anything", domain.CategoryLegalContracts, 5)
	if err != nil {
		t.Fatalf("Search() error = %v, empty retrieval is terminal, not an error", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected empty result, got %+v", chunks)
	}
}
