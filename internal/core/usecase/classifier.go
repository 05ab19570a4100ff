package usecase

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/acmecorp/docquery/internal/core/domain"
	"github.com/acmecorp/docquery/internal/core/ports"
)

//go:embed routing_rules.yaml
var routingRulesRaw []byte

type routingRules struct {
	Categories []struct {
		Name  string `yaml:"name"`
		Scope string `yaml:"scope"`
	} `yaml:"categories"`
	Disambiguation []string `yaml:"disambiguation"`
}

var rules = mustLoadRoutingRules()

func mustLoadRoutingRules() routingRules {
	var out routingRules
	if err := yaml.Unmarshal(routingRulesRaw, &out); err != nil {
		panic(fmt.Sprintf("routing rules: %v", err))
	}
	if len(out.Categories) != len(domain.Categories()) {
		panic("routing rules: category count does not match the closed set")
	}
	for _, c := range out.Categories {
		if _, ok := domain.ParseCategory(c.Name); !ok {
			panic(fmt.Sprintf("routing rules: unknown category %q", c.Name))
		}
	}
	return out
}

// Classifier maps a standalone query to exactly one member of the closed
// category set. The generation call is deterministic; output that falls
// outside the set is replaced by the default category and logged, never
// raised. The rest of the pipeline relies on that closure.
type Classifier struct {
	generator ports.TextGenerator
	logger    *slog.Logger
}

func NewClassifier(generator ports.TextGenerator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{generator: generator, logger: logger}
}

func (c *Classifier) Classify(ctx context.Context, standaloneQuery string) (domain.Category, error) {
	raw, err := c.generator.Complete(ctx, classifierInstruction(), standaloneQuery, true)
	if err != nil {
		return "", domain.WrapError(domain.ErrGenerationUnavailable, "classify query", err)
	}

	category, ok := domain.ParseCategory(raw)
	if !ok {
		c.logger.Warn("classifier produced an out-of-set category, using default",
			"predicted", strings.TrimSpace(raw),
			"default", domain.DefaultCategory.String(),
		)
		return domain.DefaultCategory, nil
	}
	return category, nil
}

func classifierInstruction() string {
	var b strings.Builder
	b.WriteString("You are an intelligent query router.\n")
	b.WriteString("Classify the user's query into EXACTLY one of the following categories:\n\n")
	for _, c := range rules.Categories {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Scope)
	}
	b.WriteString("\nRules:\n")
	for _, rule := range rules.Disambiguation {
		fmt.Fprintf(&b, "- %s\n", rule)
	}
	b.WriteString("\nReply ONLY with the exact category name. Do not add punctuation or explanation.")
	return b.String()
}
