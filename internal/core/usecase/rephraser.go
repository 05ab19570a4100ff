package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

const (
	noSummaryPlaceholder      = "(no summary yet)"
	noRecentTurnsPlaceholder  = "(no recent conversation)"
	rephraseSystemInstruction = `You rewrite follow-up questions into standalone questions.
Use the conversation context to resolve pronouns and references such as "it", "that policy" or "the previous step".
Return ONLY the rewritten standalone question. Do NOT answer it.`
)

// Rephraser rewrites a follow-up query into a standalone one using the
// session's conversational memory. A session's first query is never
// rewritten: with no turns and no summary it passes through untouched and
// no generation call is made.
type Rephraser struct {
	generator ports.TextGenerator
}

func NewRephraser(generator ports.TextGenerator) *Rephraser {
	return &Rephraser{generator: generator}
}

func (r *Rephraser) Rephrase(ctx context.Context, query string, memory *domain.ConversationMemory) (string, error) {
	if memory == nil || memory.Empty() {
		return query, nil
	}

	out, err := r.generator.Complete(ctx, rephraseSystemInstruction, rephraseContext(query, memory), false)
	if err != nil {
		return "", domain.WrapError(domain.ErrGenerationUnavailable, "rephrase query", err)
	}

	standalone := strings.TrimSpace(out)
	if standalone == "" {
		// Best-effort guarantee: never hand an empty query downstream.
		return query, nil
	}
	return standalone, nil
}

func rephraseContext(query string, memory *domain.ConversationMemory) string {
	summary := memory.Summary()
	if summary == "" {
		summary = noSummaryPlaceholder
	}

	turns := memory.Turns()
	turnLines := make([]string, 0, len(turns)*2)
	for _, t := range turns {
		turnLines = append(turnLines,
			"user: "+t.User,
			"assistant: "+t.Assistant,
		)
	}
	recent := noRecentTurnsPlaceholder
	if len(turnLines) > 0 {
		recent = strings.Join(turnLines, "\n")
	}

	return fmt.Sprintf(`Conversation summary:
%s

Recent conversation:
%s

Follow-up question:
%s`, summary, recent, query)
}
