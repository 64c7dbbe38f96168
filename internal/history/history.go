// Package history provides the bounded tool execution history store.
//
// Every tool call made by the registry is recorded here under a short
// generated ID (T001, T002, ...). The store enforces a maximum size and
// evicts the single oldest record when the bound is exceeded. IDs are
// strictly increasing and never reused within a process lifetime.
package history

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/argus-ai/argus/pkg/models"
)

// DefaultLimit is the default store bound.
const DefaultLimit = 50

// reasoningDisplayLimit truncates reasoning strings in the recent listing.
const reasoningDisplayLimit = 50

// Record is one logged tool invocation.
type Record struct {
	ID        string
	ToolName  string
	Params    map[string]any
	Response  models.ToolResult
	Reasoning string
	Timestamp time.Time
	Success   bool
}

// Store is the bounded, ID-addressable execution history.
// Insert and evict happen under one lock so concurrent tool calls can
// neither corrupt the ID counter nor double-evict.
type Store struct {
	mu      sync.Mutex
	limit   int
	counter int
	records map[string]*Record
	order   []string // insertion order, oldest first
}

// New creates a store bounded to limit records.
func New(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit:   limit,
		records: make(map[string]*Record),
	}
}

// Record logs one tool invocation and returns its generated ID.
// If the store now exceeds its bound, exactly the single oldest record
// (by timestamp) is evicted.
func (s *Store) Record(toolName string, params map[string]any, response models.ToolResult, reasoning string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	id := fmt.Sprintf("T%03d", s.counter)

	s.records[id] = &Record{
		ID:        id,
		ToolName:  toolName,
		Params:    params,
		Response:  response,
		Reasoning: reasoning,
		Timestamp: time.Now(),
		Success:   response.Success,
	}
	s.order = append(s.order, id)

	if len(s.order) > s.limit {
		oldest := s.oldestLocked()
		delete(s.records, oldest)
		for i, rid := range s.order {
			if rid == oldest {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}

	return id
}

// oldestLocked returns the ID of the record with the earliest timestamp.
// Caller holds the lock.
func (s *Store) oldestLocked() string {
	oldest := s.order[0]
	for _, id := range s.order[1:] {
		if s.records[id].Timestamp.Before(s.records[oldest].Timestamp) {
			oldest = id
		}
	}
	return oldest
}

// Get returns the full inspection view for one execution ID.
// Unknown IDs yield (nil, availableIDs) so callers can render a hint.
func (s *Store) Get(id string) (*models.ExecutionView, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		ids := make([]string, len(s.order))
		copy(ids, s.order)
		sort.Strings(ids)
		return nil, ids
	}

	return &models.ExecutionView{
		ID:       rec.ID,
		ToolName: rec.ToolName,
		Call: models.ToolCall{
			Tool:       rec.ToolName,
			Parameters: rec.Params,
			Reasoning:  rec.Reasoning,
		},
		Response:  rec.Response,
		Success:   rec.Success,
		Timestamp: rec.Timestamp,
	}, nil
}

// Recent returns up to limit records, newest first. Reasoning strings longer
// than the display threshold are truncated with an ellipsis; Get returns the
// full string.
func (s *Store) Recent(limit int) []models.ExecutionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}

	out := make([]models.ExecutionSummary, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.records[s.order[i]]
		out = append(out, models.ExecutionSummary{
			ID:        rec.ID,
			Tool:      rec.ToolName,
			Success:   rec.Success,
			Reasoning: truncate(rec.Reasoning, reasoningDisplayLimit),
		})
	}
	return out
}

// Len returns the current number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
