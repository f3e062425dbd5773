package audit

import (
	"sync"
	"time"
)

// Store is a bounded in-memory audit log. When capacity is reached the
// oldest records are dropped.
type Store struct {
	mu       sync.RWMutex
	records  []*Record
	capacity int
	nextID   int64
}

// NewStore creates a store holding at most capacity records
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Store{
		capacity: capacity,
	}
}

// Add appends a record, assigning its ID and timestamp if unset
func (s *Store) Add(record *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	record.ID = s.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	s.records = append(s.records, record)
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}
}

// Search returns matching records, newest first
func (s *Store) Search(filter Filter) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = s.capacity
	}

	out := make([]*Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		record := s.records[i]
		if filter.OrganizationID != 0 && record.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.Type != "" && record.Type != filter.Type {
			continue
		}
		out = append(out, record)
	}
	return out
}

// Len returns the number of retained records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
