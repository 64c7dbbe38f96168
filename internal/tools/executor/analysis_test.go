package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBullshitFormula(t *testing.T) {
	tool := &DetectBullshit{}

	// 3 buzzwords (synergy, leverage, disruptive) and 2 absolutes
	// (always, guaranteed): 3*0.15 + 2*0.10 = 0.65.
	text := "Our disruptive platform will leverage synergy and always deliver guaranteed results"
	result, err := tool.Execute(context.Background(), map[string]any{"text": text})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]any)
	assert.InDelta(t, 0.65, data["score"], 1e-9)
	assert.Len(t, data["buzzwords"], 3)
	assert.Len(t, data["absolutes"], 2)
	assert.Equal(t, "moderate", data["verdict"])
}

func TestDetectBullshitDeterministic(t *testing.T) {
	tool := &DetectBullshit{}
	text := "This paradigm shift is obviously a game-changer"

	first, err := tool.Execute(context.Background(), map[string]any{"text": text})
	require.NoError(t, err)
	second, err := tool.Execute(context.Background(), map[string]any{"text": text})
	require.NoError(t, err)

	assert.Equal(t, first.Data.(map[string]any)["score"], second.Data.(map[string]any)["score"])
}

func TestDetectBullshitCleanText(t *testing.T) {
	tool := &DetectBullshit{}

	result, err := tool.Execute(context.Background(), map[string]any{
		"text": "The parser rejects unterminated string literals",
	})
	require.NoError(t, err)

	data := result.Data.(map[string]any)
	assert.Equal(t, 0.0, data["score"])
	assert.Equal(t, "clean", data["verdict"])
}

func TestDetectBullshitCapsAtOne(t *testing.T) {
	tool := &DetectBullshit{}

	result, err := tool.Execute(context.Background(), map[string]any{
		"text": "synergy leverage disruptive revolutionary cutting-edge world-class " +
			"always never everyone guaranteed impossible",
	})
	require.NoError(t, err)

	data := result.Data.(map[string]any)
	assert.Equal(t, 1.0, data["score"])
}

func TestDetectBullshitNoSubstringFalsePositives(t *testing.T) {
	tool := &DetectBullshit{}

	// "ballroom" must not match "all"; "severance" must not match anything.
	result, err := tool.Execute(context.Background(), map[string]any{
		"text": "The ballroom hosted a severance party",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Data.(map[string]any)["score"])
}

func TestDetectBullshitRequiresText(t *testing.T) {
	tool := &DetectBullshit{}

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "text parameter required")
}
