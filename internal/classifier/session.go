package classifier

import "sync"

// SessionHistory keeps a rolling window of recent intent analyses.
// It is display-only context; scoring never consults it.
type SessionHistory struct {
	mu       sync.Mutex
	window   int
	analyses []*Analysis
}

// NewSessionHistory creates a history bounded to window entries.
func NewSessionHistory(window int) *SessionHistory {
	if window <= 0 {
		window = 10
	}
	return &SessionHistory{window: window}
}

// Add appends an analysis, evicting the oldest beyond the window.
func (s *SessionHistory) Add(a *Analysis) {
	if a == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyses = append(s.analyses, a)
	if len(s.analyses) > s.window {
		s.analyses = s.analyses[len(s.analyses)-s.window:]
	}
}

// Recent returns the retained analyses, oldest first.
func (s *SessionHistory) Recent() []*Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Analysis, len(s.analyses))
	copy(out, s.analyses)
	return out
}
