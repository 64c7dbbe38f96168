package history

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argus-ai/argus/pkg/models"
)

func okResult() models.ToolResult {
	return models.ToolResult{Success: true, Data: "ok"}
}

func TestIDsStrictlyIncreasing(t *testing.T) {
	s := New(3)

	first := s.Record("a", nil, okResult(), "")
	second := s.Record("b", nil, okResult(), "")

	assert.Equal(t, "T001", first)
	assert.Equal(t, "T002", second)

	// Eviction must not cause ID reuse.
	s.Record("c", nil, okResult(), "")
	s.Record("d", nil, okResult(), "")
	id := s.Record("e", nil, okResult(), "")
	assert.Equal(t, "T005", id)
}

func TestBoundEvictsSingleOldest(t *testing.T) {
	s := New(3)

	for i := 0; i < 4; i++ {
		s.Record(fmt.Sprintf("tool%d", i), nil, okResult(), "")
	}

	assert.Equal(t, 3, s.Len())

	// T001 was evicted; the recent listing never includes it.
	for _, sum := range s.Recent(10) {
		assert.NotEqual(t, "T001", sum.ID)
	}

	view, available := s.Get("T001")
	assert.Nil(t, view)
	assert.ElementsMatch(t, []string{"T002", "T003", "T004"}, available)
}

func TestGetReturnsFullView(t *testing.T) {
	s := New(5)

	id := s.Record("git_status", map[string]any{"path": "."}, okResult(), "checking the tree")

	view, available := s.Get(id)
	require.NotNil(t, view)
	assert.Nil(t, available)
	assert.Equal(t, "git_status", view.ToolName)
	assert.Equal(t, "git_status", view.Call.Tool)
	assert.Equal(t, ".", view.Call.Parameters["path"])
	assert.Equal(t, "checking the tree", view.Call.Reasoning)
	assert.True(t, view.Success)
	assert.False(t, view.Timestamp.IsZero())
}

func TestRecentNewestFirstAndTruncation(t *testing.T) {
	s := New(10)

	long := strings.Repeat("x", 80)
	s.Record("first", nil, okResult(), long)
	s.Record("second", nil, models.ToolResult{Success: false, Error: "boom"}, "short")

	recent := s.Recent(2)
	require.Len(t, recent, 2)

	assert.Equal(t, "second", recent[0].Tool)
	assert.False(t, recent[0].Success)
	assert.Equal(t, "short", recent[0].Reasoning)

	assert.Equal(t, "first", recent[1].Tool)
	assert.True(t, strings.HasSuffix(recent[1].Reasoning, "..."))
	assert.Len(t, recent[1].Reasoning, 53)

	// Get returns the untruncated reasoning.
	view, _ := s.Get(recent[1].ID)
	require.NotNil(t, view)
	assert.Equal(t, long, view.Call.Reasoning)
}

func TestConcurrentRecording(t *testing.T) {
	s := New(20)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Record("tool", nil, okResult(), "")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Len())

	// No duplicate IDs in the listing.
	seen := make(map[string]bool)
	for _, sum := range s.Recent(0) {
		assert.False(t, seen[sum.ID], "duplicate id %s", sum.ID)
		seen[sum.ID] = true
	}
}
