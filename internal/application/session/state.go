package session

import (
	"sync"

	"github.com/bryanwahyu/archscope/internal/domain/inspection"
)

// DefaultDisplay is how many history entries are shown.
const DefaultDisplay = 5

// State is the per-session application state handed to every analysis.
// Entries are only ever appended.
type State struct {
	ID string

	mu      sync.RWMutex
	history []inspection.HistoryEntry
}

func NewState(id string) *State {
	return &State{ID: id}
}

// Append records one finished analysis and returns its 1-based number.
func (s *State) Append(e inspection.HistoryEntry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, e)
	return len(s.history)
}

// Len is the full number of analyses in this session.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Recent returns up to n entries, most recent first.
func (s *State) Recent(n int) []inspection.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > len(s.history) {
		n = len(s.history)
	}
	out := make([]inspection.HistoryEntry, 0, n)
	for i := len(s.history) - 1; i >= len(s.history)-n; i-- {
		out = append(out, s.history[i])
	}
	return out
}

// Find looks an entry up by id. The second value is its 1-based number
// in the session ("Analysis #n").
func (s *State) Find(id string) (inspection.HistoryEntry, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, e := range s.history {
		if e.ID == id {
			return e, i + 1, true
		}
	}
	return inspection.HistoryEntry{}, 0, false
}

// Clear drops every entry; called when the session ends.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
