package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileRead reads file contents.
type FileRead struct{}

func (t *FileRead) Name() string        { return "file_read" }
func (t *FileRead) Description() string { return "Read file contents" }

func (t *FileRead) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	path, ok := input["path"].(string)
	if !ok || path == "" {
		return NewErrorResult(fmt.Errorf("path parameter required")), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return NewErrorResult(err), nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return NewErrorResult(err), nil
	}

	offset := 0
	if o, ok := toInt(input["offset"]); ok {
		offset = o
	}
	limit := -1
	if l, ok := toInt(input["limit"]); ok {
		limit = l
	}

	lines := strings.Split(string(content), "\n")
	total := len(lines)
	if offset > 0 {
		if offset >= len(lines) {
			lines = nil
		} else {
			lines = lines[offset:]
		}
	}
	if limit > 0 && limit < len(lines) {
		lines = lines[:limit]
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"path":    absPath,
		"content": strings.Join(lines, "\n"),
		"lines":   len(lines),
		"total":   total,
	}), start), nil
}

// FileList lists directory contents.
type FileList struct{}

func (t *FileList) Name() string        { return "file_list" }
func (t *FileList) Description() string { return "List directory contents" }

func (t *FileList) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	path := "."
	if p, ok := input["path"].(string); ok && p != "" {
		path = p
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return NewErrorResult(err), nil
	}

	recursive := false
	if r, ok := input["recursive"].(bool); ok {
		recursive = r
	}

	var entries []map[string]any
	if recursive {
		err = filepath.WalkDir(absPath, func(p string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if p == absPath {
				return nil
			}
			rel, relErr := filepath.Rel(absPath, p)
			if relErr != nil {
				return relErr
			}
			// Dot directories dominate the noise in a home or repo tree.
			if strings.HasPrefix(d.Name(), ".") && d.IsDir() {
				return filepath.SkipDir
			}
			entries = append(entries, map[string]any{
				"name": rel,
				"dir":  d.IsDir(),
			})
			return nil
		})
		if err != nil {
			return NewErrorResult(err), nil
		}
	} else {
		dirEntries, readErr := os.ReadDir(absPath)
		if readErr != nil {
			return NewErrorResult(readErr), nil
		}
		for _, d := range dirEntries {
			entries = append(entries, map[string]any{
				"name": d.Name(),
				"dir":  d.IsDir(),
			})
		}
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"path":    absPath,
		"entries": entries,
		"count":   len(entries),
	}), start), nil
}

// toInt accepts the numeric shapes JSON decoding and in-process callers
// produce for integer parameters.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
