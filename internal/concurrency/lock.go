package concurrency

import "sync"

// SessionLocks hands out one mutex per session ID so concurrent queries
// on the same session are processed in order.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *SessionLocks) Lock(sessionID string) {
	s.forSession(sessionID).Lock()
}

func (s *SessionLocks) Unlock(sessionID string) {
	s.mu.Lock()
	lock := s.locks[sessionID]
	s.mu.Unlock()
	if lock != nil {
		lock.Unlock()
	}
}

func (s *SessionLocks) forSession(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}
