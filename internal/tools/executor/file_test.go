package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReadReturnsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree"), 0o644))

	tool := &FileRead{}
	result, err := tool.Execute(context.Background(), map[string]any{"path": path})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]any)
	assert.Equal(t, "one\ntwo\nthree", data["content"])
	assert.Equal(t, 3, data["total"])
}

func TestFileReadHonorsOffsetAndLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\nd"), 0o644))

	tool := &FileRead{}
	result, err := tool.Execute(context.Background(), map[string]any{
		"path":   path,
		"offset": 1,
		"limit":  2,
	})
	require.NoError(t, err)

	data := result.Data.(map[string]any)
	assert.Equal(t, "b\nc", data["content"])
}

func TestFileReadMissingFile(t *testing.T) {
	tool := &FileRead{}
	result, err := tool.Execute(context.Background(), map[string]any{
		"path": filepath.Join(t.TempDir(), "absent.txt"),
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestFileListDefaultsAndCounts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	tool := &FileList{}
	result, err := tool.Execute(context.Background(), map[string]any{"path": dir})
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data.(map[string]any)
	assert.Equal(t, 2, data["count"])
}
