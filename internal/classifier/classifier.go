// Package classifier provides intent classification for user messages.
//
// Classification is purely rule-based: every registered category scores the
// lower-cased message by pattern matches, and the best score wins. The same
// text against the same category set always yields the same analysis.
package classifier

import (
	"strings"
)

// Complexity buckets derived from word count.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// FallbackCategory is used when nothing matches.
const FallbackCategory = "conversation"

// FallbackConfidence is the confidence assigned to the fallback intent.
const FallbackConfidence = 0.3

// matchWeight is the score contribution of a single pattern match.
const matchWeight = 0.2

// Category describes one intent category and its matching rules.
type Category struct {
	Name           string
	Patterns       []string
	Boost          float64 // confidence multiplier applied after accumulation
	PreferredTools []string
	ContextHints   []string
}

// Score is the per-category outcome of scoring one message.
type Score struct {
	Category       string   `json:"category"`
	Value          float64  `json:"value"` // in [0, 1]
	Matched        []string `json:"matched"`
	PreferredTools []string `json:"preferred_tools"`
	ContextHints   []string `json:"context_hints"`
}

// Meta carries message-shape metadata alongside the intent.
type Meta struct {
	Length          int    `json:"length"`
	Complexity      string `json:"complexity"`
	IsQuestion      bool   `json:"is_question"`
	IsPoliteRequest bool   `json:"is_polite_request"`
}

// Analysis is the full classification result for one message.
type Analysis struct {
	Primary    string            `json:"primary"`
	Confidence float64           `json:"confidence"`
	Scores     map[string]*Score `json:"scores"`
	Meta       Meta              `json:"meta"`
}

// Classifier scores messages against a registration-ordered category set.
type Classifier struct {
	categories []Category
}

// New creates a classifier with the default category set.
func New() *Classifier {
	return &Classifier{categories: defaultCategories()}
}

// NewWithCategories creates a classifier with a custom category set.
// Order is significant: ties are broken by registration order.
func NewWithCategories(categories []Category) *Classifier {
	return &Classifier{categories: categories}
}

// Categories returns the registered categories in registration order.
func (c *Classifier) Categories() []Category {
	return c.categories
}

// Classify scores the message against every registered category.
// It has no side effects and is deterministic for identical input.
func (c *Classifier) Classify(message string) *Analysis {
	lower := strings.ToLower(message)

	analysis := &Analysis{
		Primary:    FallbackCategory,
		Confidence: FallbackConfidence,
		Scores:     make(map[string]*Score, len(c.categories)),
		Meta:       describeMessage(message),
	}

	best := 0.0
	for _, cat := range c.categories {
		score := scoreCategory(cat, lower)
		analysis.Scores[cat.Name] = score

		// Strictly-greater keeps the first registered category on ties.
		if score.Value > best {
			best = score.Value
			analysis.Primary = cat.Name
			analysis.Confidence = score.Value
		}
	}

	return analysis
}

// scoreCategory accumulates a fixed weight per pattern match, applies the
// category boost and caps the result at 1.0.
func scoreCategory(cat Category, lower string) *Score {
	score := &Score{
		Category:       cat.Name,
		PreferredTools: cat.PreferredTools,
		ContextHints:   cat.ContextHints,
	}

	for _, pattern := range cat.Patterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			score.Matched = append(score.Matched, pattern)
		}
	}

	if len(score.Matched) == 0 {
		return score
	}

	value := float64(len(score.Matched)) * matchWeight
	boost := cat.Boost
	if boost == 0 {
		boost = 1.0
	}
	value *= boost
	if value > 1.0 {
		value = 1.0
	}
	score.Value = value
	return score
}

// describeMessage derives length, complexity and phrasing metadata.
func describeMessage(message string) Meta {
	words := strings.Fields(message)

	complexity := ComplexityComplex
	switch {
	case len(words) < 5:
		complexity = ComplexitySimple
	case len(words) < 15:
		complexity = ComplexityModerate
	}

	lower := strings.ToLower(message)
	polite := false
	for _, phrase := range []string{"please", "could you", "would you", "can you"} {
		if strings.Contains(lower, phrase) {
			polite = true
			break
		}
	}

	return Meta{
		Length:          len(message),
		Complexity:      complexity,
		IsQuestion:      strings.Contains(message, "?"),
		IsPoliteRequest: polite,
	}
}
