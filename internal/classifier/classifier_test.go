package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDeterministic(t *testing.T) {
	c := New()

	first := c.Classify("Check the git status of this project")
	second := c.Classify("Check the git status of this project")

	assert.Equal(t, first.Primary, second.Primary)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, len(first.Scores), len(second.Scores))
}

func TestClassifyGitStatus(t *testing.T) {
	c := New()

	a := c.Classify("Check the git status of this project")

	assert.Equal(t, "development", a.Primary)
	assert.Greater(t, a.Confidence, 0.0)
	require.NotNil(t, a.Scores["development"])
	assert.Contains(t, a.Scores["development"].Matched, "git")
}

func TestClassifyProtocolQuestion(t *testing.T) {
	c := New()

	a := c.Classify("what protocols can you see?")

	assert.Equal(t, "protocol", a.Primary)
	assert.True(t, a.Meta.IsQuestion)
}

func TestClassifyFallback(t *testing.T) {
	c := New()

	a := c.Classify("zzz qqq xyzzy")

	assert.Equal(t, FallbackCategory, a.Primary)
	assert.Equal(t, FallbackConfidence, a.Confidence)
}

func TestScoreAccumulationAndCap(t *testing.T) {
	cats := []Category{
		{Name: "stacked", Patterns: []string{"aa", "bb", "cc", "dd", "ee", "ff"}, Boost: 1.0},
	}
	c := NewWithCategories(cats)

	// Six matches at 0.2 each would be 1.2 without the cap.
	a := c.Classify("aa bb cc dd ee ff")
	assert.Equal(t, 1.0, a.Confidence)

	// Two matches accumulate without hitting the cap.
	a = c.Classify("aa bb")
	assert.InDelta(t, 0.4, a.Confidence, 1e-9)
}

func TestTieBrokenByRegistrationOrder(t *testing.T) {
	cats := []Category{
		{Name: "first", Patterns: []string{"shared"}, Boost: 1.0},
		{Name: "second", Patterns: []string{"shared"}, Boost: 1.0},
	}
	c := NewWithCategories(cats)

	a := c.Classify("shared term here")
	assert.Equal(t, "first", a.Primary)
}

func TestComplexityBuckets(t *testing.T) {
	c := New()

	tests := []struct {
		message string
		want    string
	}{
		{"hi there", ComplexitySimple},
		{"please check the git status of this project now", ComplexityModerate},
		{"one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen", ComplexityComplex},
	}

	for _, tt := range tests {
		a := c.Classify(tt.message)
		assert.Equal(t, tt.want, a.Meta.Complexity, "message: %s", tt.message)
	}
}

func TestPoliteRequestDetection(t *testing.T) {
	c := New()

	assert.True(t, c.Classify("Could you read that file for me").Meta.IsPoliteRequest)
	assert.False(t, c.Classify("read that file").Meta.IsPoliteRequest)
}

func TestSessionHistoryWindow(t *testing.T) {
	h := NewSessionHistory(2)
	c := New()

	h.Add(c.Classify("one"))
	h.Add(c.Classify("two"))
	h.Add(c.Classify("git status"))

	recent := h.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "development", recent[1].Primary)
}
