package model

import (
	"context"
	"strings"

	"github.com/hupe1980/agentflow/core"
)

// Classifier maps free-form query text to a QueryType. The router consults it
// only for queries submitted without an explicit type; classification failures
// fall back to GENERAL and never abort routing.
type Classifier interface {
	Classify(ctx context.Context, query string) (core.QueryType, error)
}

// KeywordClassifier is a deterministic, dependency-free Classifier based on
// keyword matching. Code keywords are checked before research keywords,
// decision keywords last, GENERAL is the default.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a KeywordClassifier.
func NewKeywordClassifier() *KeywordClassifier { return &KeywordClassifier{} }

var (
	codeKeywords     = []string{"code", "function", "implement", "debug", "compile", "script", "program", "bug", "refactor"}
	researchKeywords = []string{"research", "find", "search", "what is", "who is", "explain", "history", "information"}
	decisionKeywords = []string{"decide", "should i", "compare", "choose", "recommend", "versus", " vs ", "better"}
)

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(_ context.Context, query string) (core.QueryType, error) {
	q := strings.ToLower(query)
	for _, kw := range codeKeywords {
		if strings.Contains(q, kw) {
			return core.QueryTypeCode, nil
		}
	}
	for _, kw := range researchKeywords {
		if strings.Contains(q, kw) {
			return core.QueryTypeResearch, nil
		}
	}
	for _, kw := range decisionKeywords {
		if strings.Contains(q, kw) {
			return core.QueryTypeDecision, nil
		}
	}
	return core.QueryTypeGeneral, nil
}

// ModelClassifier asks a Model to categorize the query. The model output is
// matched case-insensitively against the known categories; anything else maps
// to GENERAL.
type ModelClassifier struct {
	model Model
}

// NewModelClassifier creates a ModelClassifier backed by m.
func NewModelClassifier(m Model) *ModelClassifier { return &ModelClassifier{model: m} }

const classifyInstructions = "Classify the user query into exactly one category: RESEARCH, CODE, DECISION or GENERAL. Respond with the category name only."

// Classify implements Classifier.
func (c *ModelClassifier) Classify(ctx context.Context, query string) (core.QueryType, error) {
	resp, err := c.model.Generate(ctx, Request{Instructions: classifyInstructions, Prompt: query})
	if err != nil {
		return core.QueryTypeGeneral, err
	}
	switch {
	case containsFold(resp.Content, string(core.QueryTypeCode)):
		return core.QueryTypeCode, nil
	case containsFold(resp.Content, string(core.QueryTypeResearch)):
		return core.QueryTypeResearch, nil
	case containsFold(resp.Content, string(core.QueryTypeDecision)):
		return core.QueryTypeDecision, nil
	default:
		return core.QueryTypeGeneral, nil
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(sub))
}
