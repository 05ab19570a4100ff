package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

const compactionInstruction = `You maintain a running summary of a conversation.
Merge the evicted exchange into the existing summary.
Preserve named entities, numbers, dates and domain-specific details.
Return ONLY the updated summary as plain text.`

// MemoryManager owns the bounded turn window and its compaction lifecycle.
// Appending a turn past the bound evicts exactly one oldest turn and folds
// it into the running summary via a summarization call whose output
// unconditionally replaces the summary.
//
// The eviction happens before the summarization call: if that call fails the
// error propagates and the evicted turn is already gone.
type MemoryManager struct {
	memory      *domain.ConversationMemory
	summarizer  ports.TextGenerator
	compactions int
}

func NewMemoryManager(window int, summarizer ports.TextGenerator) *MemoryManager {
	return &MemoryManager{
		memory:     domain.NewConversationMemory(window),
		summarizer: summarizer,
	}
}

// Memory exposes the managed state for read access (rephrasing, prompt
// assembly). Callers must not retain it across turns of other sessions.
func (m *MemoryManager) Memory() *domain.ConversationMemory { return m.memory }

// Compactions reports how many evicted turns have been folded into the
// summary so far.
func (m *MemoryManager) Compactions() int { return m.compactions }

// Append adds the turn to the window tail, compacting the evicted turn into
// the summary when the bound is crossed.
func (m *MemoryManager) Append(ctx context.Context, turn domain.Turn) error {
	evicted, ok := m.memory.Append(turn)
	if !ok {
		return nil
	}

	out, err := m.summarizer.Complete(ctx, compactionInstruction, compactionContext(m.memory.Summary(), evicted), false)
	if err != nil {
		return domain.WrapError(domain.ErrGenerationUnavailable, "compact memory", err)
	}

	m.memory.SetSummary(strings.TrimSpace(out))
	m.compactions++
	return nil
}

func compactionContext(summary string, evicted domain.Turn) string {
	if summary == "" {
		summary = noSummaryPlaceholder
	}
	return fmt.Sprintf(`Current summary:
%s

Evicted exchange:
user: %s
assistant: %s`, summary, evicted.User, evicted.Assistant)
}
