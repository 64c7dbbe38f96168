package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "argus.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreAndSearch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.StoreMemory(ctx, "the deploy runs every friday afternoon", "ops")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = s.StoreMemory(ctx, "favorite editor is vim", "preferences")
	require.NoError(t, err)

	entries, err := s.Search(ctx, "deploy friday")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "ops", entries[0].Category)
	assert.Contains(t, entries[0].Content, "deploy")
}

func TestStoreRejectsEmptyContent(t *testing.T) {
	s := openTestStore(t)

	_, err := s.StoreMemory(context.Background(), "   ", "general")
	assert.Error(t, err)
}

func TestSearchWithPunctuationOnlyFallsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.StoreMemory(ctx, "something worth keeping", "general")
	require.NoError(t, err)

	// No searchable tokens: falls back to recent entries.
	entries, err := s.Search(ctx, "?! ...")
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRecentNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.StoreMemory(ctx, "first memory", "general")
	require.NoError(t, err)
	_, err = s.StoreMemory(ctx, "second memory", "general")
	require.NoError(t, err)

	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
