package appointment

import (
	"sort"
	"sync"
)

// Store holds the committed snapshot of every calendar in memory. Snapshots
// are swapped whole; a snapshot handed out is never modified afterwards.
type Store struct {
	mu        sync.RWMutex
	calendars map[string]Snapshot
}

func NewStore() *Store {
	return &Store{calendars: make(map[string]Snapshot)}
}

// Snapshot returns the current appointments of calendarID. Unknown calendars
// are empty.
func (s *Store) Snapshot(calendarID string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calendars[calendarID]
}

// Replace swaps in a new snapshot for calendarID.
func (s *Store) Replace(calendarID string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars[calendarID] = snap
}

// Calendars lists the ids of calendars that have been written to, sorted.
func (s *Store) Calendars() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.calendars))
	for id := range s.calendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
