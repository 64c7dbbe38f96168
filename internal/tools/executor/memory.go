package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/argus-ai/argus/internal/memory"
)

// MemoryStore persists a memory entry.
type MemoryStore struct {
	Memories *memory.Store
}

func (t *MemoryStore) Name() string        { return "memory_store" }
func (t *MemoryStore) Description() string { return "Store a memory for later recall" }

func (t *MemoryStore) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	content, ok := input["content"].(string)
	if !ok || content == "" {
		return NewErrorResult(fmt.Errorf("content parameter required")), nil
	}

	category := "general"
	if c, ok := input["category"].(string); ok && c != "" {
		category = c
	}

	id, err := t.Memories.StoreMemory(ctx, content, category)
	if err != nil {
		return NewErrorResult(err), nil
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"id":       id,
		"category": category,
		"stored":   true,
	}), start), nil
}

// MemorySearch retrieves memories matching a query, falling back to the
// most recent entries for an empty query.
type MemorySearch struct {
	Memories *memory.Store
}

func (t *MemorySearch) Name() string        { return "memory_search" }
func (t *MemorySearch) Description() string { return "Search stored memories" }

func (t *MemorySearch) Execute(ctx context.Context, input map[string]any) (*Result, error) {
	start := time.Now()

	query, _ := input["query"].(string)
	limit := 10
	if l, ok := toInt(input["limit"]); ok && l > 0 {
		limit = l
	}

	var (
		entries []memory.Entry
		err     error
	)
	if query == "" {
		entries, err = t.Memories.Recent(ctx, limit)
	} else {
		entries, err = t.Memories.Search(ctx, query)
	}
	if err != nil {
		return NewErrorResult(err), nil
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	matches := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		matches = append(matches, map[string]any{
			"id":         e.ID,
			"content":    e.Content,
			"category":   e.Category,
			"created_at": e.CreatedAt,
		})
	}

	return TimedResult(NewSuccessResult(map[string]any{
		"query":   query,
		"matches": matches,
		"count":   len(matches),
	}), start), nil
}
