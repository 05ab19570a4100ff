package domain

import "strings"

// Category is one of the fixed document-repository partitions queries are
// routed to before retrieval. The set is closed; classification must always
// resolve to a member.
type Category string

const (
	CategorySOPs           Category = "SOPs"
	CategoryHRManual       Category = "HR_Manual"
	CategoryTechnicalSpecs Category = "Technical_Specifications"
	CategoryFinancePolicy  Category = "Finance_Policy"
	CategoryLegalContracts Category = "Legal_Contracts"
)

// DefaultCategory is substituted when a classifier output falls outside the
// closed set.
const DefaultCategory = CategorySOPs

// Categories returns the closed category set in stable order.
func Categories() []Category {
	return []Category{
		CategorySOPs,
		CategoryHRManual,
		CategoryTechnicalSpecs,
		CategoryFinancePolicy,
		CategoryLegalContracts,
	}
}

// ParseCategory converts raw model output into a Category at the trust
// boundary. Surrounding whitespace, punctuation and quoting are stripped
// before matching; matching is case-insensitive.
func ParseCategory(raw string) (Category, bool) {
	cleaned := strings.TrimFunc(raw, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', '\r', '.', ',', ';', ':', '!', '?', '"', '\'', '`', '*':
			return true
		}
		return false
	})
	for _, c := range Categories() {
		if strings.EqualFold(cleaned, string(c)) {
			return c, true
		}
	}
	return "", false
}

func (c Category) String() string { return string(c) }

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}
