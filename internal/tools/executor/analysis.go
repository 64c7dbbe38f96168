package executor

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// buzzwords are hype terms that inflate the score by 0.15 each.
var buzzwords = []string{
	"synergy", "disruptive", "paradigm shift", "leverage", "game-changer",
	"revolutionary", "cutting-edge", "world-class", "best-in-class",
	"next-generation", "thought leader", "low-hanging fruit", "move the needle",
	"blockchain-powered", "ai-powered",
}

// absolutes are certainty words that add 0.10 each.
var absolutes = []string{
	"always", "never", "everyone", "nobody", "guaranteed", "impossible",
	"certainly", "undoubtedly", "definitely", "obviously",
}

// DetectBullshit scores text for hype and overclaiming. Scoring is a fixed
// accumulation so identical input always yields an identical score.
type DetectBullshit struct{}

func (t *DetectBullshit) Name() string        { return "detect_bullshit" }
func (t *DetectBullshit) Description() string { return "Score text for hype and overclaiming" }

func (t *DetectBullshit) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	text, ok := input["text"].(string)
	if !ok || text == "" {
		return NewErrorResult(fmt.Errorf("text parameter required")), nil
	}

	lower := strings.ToLower(text)
	words := wordSet(lower)

	var foundBuzz, foundAbsolute []string
	for _, term := range buzzwords {
		if termPresent(lower, words, term) {
			foundBuzz = append(foundBuzz, term)
		}
	}
	for _, term := range absolutes {
		if termPresent(lower, words, term) {
			foundAbsolute = append(foundAbsolute, term)
		}
	}

	score := float64(len(foundBuzz))*0.15 + float64(len(foundAbsolute))*0.10
	if score > 1.0 {
		score = 1.0
	}

	verdict := "clean"
	switch {
	case score >= 0.7:
		verdict = "high"
	case score >= 0.4:
		verdict = "moderate"
	case score > 0:
		verdict = "low"
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"score":     score,
		"verdict":   verdict,
		"buzzwords": foundBuzz,
		"absolutes": foundAbsolute,
	}), start), nil
}

// termPresent matches single words against the word set and multi-word or
// hyphenated terms as substrings, so "ball" never matches "all".
func termPresent(lower string, words map[string]bool, term string) bool {
	if strings.ContainsAny(term, " -") {
		return strings.Contains(lower, term)
	}
	return words[term]
}

func wordSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		set[w] = true
	}
	return set
}
