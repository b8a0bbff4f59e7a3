package storage

import (
	"sync"
	"time"

	"github.com/brain-tumor-detection/tumorscan/internal/session"
	"github.com/google/uuid"
)

// DefaultTTL is how long a session survives without being looked up
const DefaultTTL = time.Hour

// Entry is a stored upload session
type Entry struct {
	ID         string
	Machine    *session.Machine
	CreatedAt  time.Time
	lastAccess time.Time
}

// SessionStore keeps one upload session per visitor in memory. Sessions idle
// for longer than the TTL are swept on Create.
type SessionStore struct {
	sessions map[string]*Entry
	mu       sync.Mutex
	ttl      time.Duration
	onEvict  func(*Entry)
	now      func() time.Time
}

// New returns a store that evicts sessions idle for longer than ttl.
// A ttl of zero or less keeps sessions until they are deleted. onEvict, when
// set, is called outside the store lock for every evicted entry.
func New(ttl time.Duration, onEvict func(*Entry)) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Entry),
		ttl:      ttl,
		onEvict:  onEvict,
		now:      time.Now,
	}
}

// Create starts a new Idle session
func (s *SessionStore) Create() *Entry {
	now := s.now()
	entry := &Entry{
		ID:         uuid.NewString(),
		Machine:    session.New(),
		CreatedAt:  now,
		lastAccess: now,
	}

	s.mu.Lock()
	evicted := s.sweepLocked(now)
	s.sessions[entry.ID] = entry
	s.mu.Unlock()

	s.notify(evicted)
	return entry
}

// Get returns the session and marks it as used
func (s *SessionStore) Get(sessionID string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, exists := s.sessions[sessionID]
	if exists {
		entry.lastAccess = s.now()
	}
	return entry, exists
}

func (s *SessionStore) GetAll() map[string]*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]*Entry, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

func (s *SessionStore) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	return exists
}

// Sweep evicts every expired session and returns how many were removed
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	evicted := s.sweepLocked(s.now())
	s.mu.Unlock()

	s.notify(evicted)
	return len(evicted)
}

// Len returns the number of stored sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepLocked(now time.Time) []*Entry {
	if s.ttl <= 0 {
		return nil
	}

	var evicted []*Entry
	for id, entry := range s.sessions {
		if now.Sub(entry.lastAccess) > s.ttl {
			delete(s.sessions, id)
			evicted = append(evicted, entry)
		}
	}
	return evicted
}

func (s *SessionStore) notify(evicted []*Entry) {
	if s.onEvict == nil {
		return
	}
	for _, entry := range evicted {
		s.onEvict(entry)
	}
}
