package chat

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canned answer categories, in classification order.
const (
	CategoryGreeting       = "greeting"
	CategoryWasteStats     = "waste_stats"
	CategoryTips           = "tips"
	CategorySustainability = "sustainability"
	CategoryFallback       = "fallback"
)

// keywordRules are checked in order; the first rule with a keyword contained
// in the lower-cased query wins.
var keywordRules = []struct {
	category string
	keywords []string
}{
	{CategoryGreeting, []string{"hello", "hi", "hey"}},
	{CategoryWasteStats, []string{"waste", "quantity", "total"}},
	{CategoryTips, []string{"tip", "reduce", "prevent"}},
	{CategorySustainability, []string{"sustain", "planet", "eco"}},
}

// Responses maps a canned category to its candidate answers.
type Responses map[string][]string

// DefaultResponses returns the built-in canned answers, one per category.
func DefaultResponses() Responses {
	return Responses{
		CategoryGreeting:       {"Hello! How can I help with food waste today?"},
		CategoryWasteStats:     {"Here's what I know about your waste patterns..."},
		CategoryTips:           {"Try meal planning to reduce waste!"},
		CategorySustainability: {"Food waste reduction helps the planet!"},
		CategoryFallback:       {"I'm not sure I understand. Ask about waste stats or tips!"},
	}
}

// Classify returns the canned category for query.
func Classify(query string) string {
	q := strings.ToLower(query)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.category
			}
		}
	}
	return CategoryFallback
}

// LoadResponses reads a YAML mapping of category to answer list and lays it
// over the defaults. Unknown categories and empty lists are rejected.
func LoadResponses(path string) (Responses, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses file: %w", err)
	}

	var overrides map[string][]string
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse responses file %s: %w", path, err)
	}

	out := DefaultResponses()
	for category, answers := range overrides {
		if _, ok := out[category]; !ok {
			return nil, fmt.Errorf("unknown response category %q in %s", category, path)
		}
		answers = slices.DeleteFunc(answers, func(s string) bool { return strings.TrimSpace(s) == "" })
		if len(answers) == 0 {
			return nil, fmt.Errorf("response category %q in %s has no answers", category, path)
		}
		out[category] = answers
	}
	return out, nil
}
