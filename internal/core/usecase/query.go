package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

// QueryUseCase answers a single standalone question without conversational
// state: classify, retrieve, generate. It is the stateless counterpart of a
// session turn.
type QueryUseCase struct {
	classifier *Classifier
	retriever  *HybridRetriever
	generator  ports.TextGenerator
	topK       int
}

func NewQueryUseCase(classifier *Classifier, retriever *HybridRetriever, generator ports.TextGenerator, topK int) *QueryUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &QueryUseCase{
		classifier: classifier,
		retriever:  retriever,
		generator:  generator,
		topK:       topK,
	}
}

func (uc *QueryUseCase) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", fmt.Errorf("question is empty"))
	}

	category, err := uc.classifier.Classify(ctx, question)
	if err != nil {
		return nil, err
	}

	chunks, err := uc.retriever.Search(ctx, question, category, uc.topK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &domain.Answer{Text: domain.NoRelevantDocumentsMessage, Category: category}, nil
	}

	var b strings.Builder
	for _, chunk := range chunks {
		b.WriteString(chunk.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("Question:\n")
	b.WriteString(question)

	raw, err := uc.generator.Complete(ctx, fmt.Sprintf(answerInstructionTemplate, category), "Context:\n"+b.String(), false)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGenerationUnavailable, "generate answer", err)
	}

	return &domain.Answer{
		Text:     strings.TrimSpace(raw),
		Category: category,
		Sources:  chunks,
	}, nil
}
