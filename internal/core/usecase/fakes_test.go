package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/acmecorp/docquery/internal/core/domain"
)

// generatorFake scripts Complete by instruction kind and records every call
// so tests can assert which pipeline stages ran.
type generatorFake struct {
	mu    sync.Mutex
	calls []generatorCall

	classifyOut string
	rephraseOut string
	summaryOut  string
	answerOut   string

	classifyErr error
	rephraseErr error
	summaryErr  error
	answerErr   error
}

type generatorCall struct {
	kind          string
	content       string
	deterministic bool
}

func (g *generatorFake) Complete(_ context.Context, instruction, content string, deterministic bool) (string, error) {
	kind := "answer"
	switch {
	case strings.Contains(instruction, "query router"):
		kind = "classify"
	case strings.Contains(instruction, "standalone questions"):
		kind = "rephrase"
	case strings.Contains(instruction, "running summary"):
		kind = "summary"
	}

	g.mu.Lock()
	g.calls = append(g.calls, generatorCall{kind: kind, content: content, deterministic: deterministic})
	g.mu.Unlock()

	switch kind {
	case "classify":
		if g.classifyErr != nil {
			return "", g.classifyErr
		}
		return g.classifyOut, nil
	case "rephrase":
		if g.rephraseErr != nil {
			return "", g.rephraseErr
		}
		return g.rephraseOut, nil
	case "summary":
		if g.summaryErr != nil {
			return "", g.summaryErr
		}
		return g.summaryOut, nil
	default:
		if g.answerErr != nil {
			return "", g.answerErr
		}
		return g.answerOut, nil
	}
}

func (g *generatorFake) callsOfKind(kind string) []generatorCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []generatorCall
	for _, c := range g.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

type semanticIndexFake struct {
	chunks   []domain.RetrievedChunk
	err      error
	lastK    int
	lastCat  domain.Category
	lastText string
}

func (f *semanticIndexFake) Query(_ context.Context, text string, category domain.Category, k int) ([]domain.RetrievedChunk, error) {
	f.lastText = text
	f.lastCat = category
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.RetrievedChunk
	for _, c := range f.chunks {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out, nil
}

type lexicalIndexFake struct {
	chunks []domain.RetrievedChunk
	err    error
	calls  int
}

func (f *lexicalIndexFake) Query(context.Context, string) ([]domain.RetrievedChunk, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type transcriptFake struct {
	entries []domain.TranscriptEntry
	err     error
}

func (f *transcriptFake) AppendEntry(_ context.Context, entry domain.TranscriptEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *transcriptFake) ListBySession(context.Context, string, int) ([]domain.TranscriptEntry, error) {
	return nil, errors.New("not implemented")
}

func sop(text string) domain.RetrievedChunk {
	return domain.RetrievedChunk{Text: text, Category: domain.CategorySOPs, Source: "sop.pdf"}
}

func hr(text string) domain.RetrievedChunk {
	return domain.RetrievedChunk{Text: text, Category: domain.CategoryHRManual, Source: "handbook.pdf"}
}
