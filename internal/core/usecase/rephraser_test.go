package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/acmecorp/docquery/internal/core/domain"
)

func TestRephraseFirstTurnPassesThrough(t *testing.T) {
	gen := &generatorFake{rephraseOut: "should never be used"}
	rephraser := NewRephraser(gen)
	memory := domain.NewConversationMemory(5)

	got, err := rephraser.Rephrase(context.Background(), "What is the refund policy?", memory)
	if err != nil {
		t.Fatalf("Rephrase() error = %v", err)
	}
	if got != "What is the refund policy?" {
		t.Fatalf("first turn must pass through untouched, got %q", got)
	}
	if calls := gen.callsOfKind("rephrase"); len(calls) != 0 {
		t.Fatalf("expected no generation call on first turn, got %d", len(calls))
	}
}

func TestRephraseUsesConversationState(t *testing.T) {
	gen := &generatorFake{rephraseOut: "What is the notice period in the vendor contract?"}
	rephraser := NewRephraser(gen)
	memory := domain.NewConversationMemory(5)
	memory.Append(domain.Turn{User: "Summarize the vendor contract.", Assistant: "It covers delivery and notice terms."})

	got, err := rephraser.Rephrase(context.Background(), "What is the notice period in it?", memory)
	if err != nil {
		t.Fatalf("Rephrase() error = %v", err)
	}
	if got != "What is the notice period in the vendor contract?" {
		t.Fatalf("expected rewritten standalone question, got %q", got)
	}

	calls := gen.callsOfKind("rephrase")
	if len(calls) != 1 {
		t.Fatalf("expected 1 rephrase call, got %d", len(calls))
	}
	if !strings.Contains(calls[0].content, "Summarize the vendor contract.") {
		t.Fatalf("rephrase context missing prior turn: %q", calls[0].content)
	}
	if !strings.Contains(calls[0].content, "What is the notice period in it?") {
		t.Fatalf("rephrase context missing follow-up question: %q", calls[0].content)
	}
}

func TestRephraseSummaryOnlyMemoryTriggersRewrite(t *testing.T) {
	gen := &generatorFake{rephraseOut: "standalone"}
	rephraser := NewRephraser(gen)
	memory := domain.NewConversationMemory(5)
	memory.SetSummary("Earlier the user asked about travel reimbursements.")

	if _, err := rephraser.Rephrase(context.Background(), "And for hotels?", memory); err != nil {
		t.Fatalf("Rephrase() error = %v", err)
	}
	if calls := gen.callsOfKind("rephrase"); len(calls) != 1 {
		t.Fatalf("summary-only memory is not empty; expected a rewrite call, got %d", len(calls))
	}
}

func TestRephraseEmptyOutputFallsBackToOriginal(t *testing.T) {
	gen := &generatorFake{rephraseOut: "  \n "}
	rephraser := NewRephraser(gen)
	memory := domain.NewConversationMemory(5)
	memory.Append(domain.Turn{User: "u", Assistant: "a"})

	got, err := rephraser.Rephrase(context.Background(), "original question", memory)
	if err != nil {
		t.Fatalf("Rephrase() error = %v", err)
	}
	if got != "original question" {
		t.Fatalf("expected fallback to original query, got %q", got)
	}
}

func TestRephraseGeneratorErrorIsTyped(t *testing.T) {
	gen := &generatorFake{rephraseErr: errors.New("timeout")}
	rephraser := NewRephraser(gen)
	memory := domain.NewConversationMemory(5)
	memory.Append(domain.Turn{User: "u", Assistant: "a"})

	_, err := rephraser.Rephrase(context.Background(), "follow-up", memory)
	if !domain.IsKind(err, domain.ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}
