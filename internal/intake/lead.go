package intake

import (
	"sync"
	"time"
)

// DefaultCapacity is how many leads a Store keeps before dropping the oldest.
const DefaultCapacity = 500

// LeadField is one submitted form value.
type LeadField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Lead is one accepted form submission.
type Lead struct {
	ID         string      `json:"id"`
	FormID     string      `json:"form_id"`
	ReceivedAt time.Time   `json:"received_at"`
	RemoteAddr string      `json:"remote_addr"`
	UserAgent  string      `json:"user_agent,omitempty"`
	Fields     []LeadField `json:"fields"`
}

// Get returns the first value submitted for name.
func (l *Lead) Get(name string) (string, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Store is a bounded, in-memory list of leads in arrival order.
type Store struct {
	mu       sync.RWMutex
	leads    []Lead
	capacity int
}

// NewStore creates a store holding at most capacity leads.
// A non-positive capacity selects DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// Add appends a lead, evicting the oldest one when full.
func (s *Store) Add(l Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.leads) == s.capacity {
		copy(s.leads, s.leads[1:])
		s.leads = s.leads[:len(s.leads)-1]
	}
	s.leads = append(s.leads, l)
}

// List returns a copy of the stored leads, oldest first.
func (s *Store) List() []Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Lead(nil), s.leads...)
}

// Len returns the number of stored leads.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}
