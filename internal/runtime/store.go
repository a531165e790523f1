package runtime

import (
	"fmt"
	"sync"
	"time"
)

// Store holds live attempt sessions in memory. Sessions are transient by
// design: only recorded outcomes survive a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func sessionKey(username string, day int) string {
	return fmt.Sprintf("%s|%d", username, day)
}

// Put stores a session, replacing any previous one for the same player/day.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sessionKey(s.Username, s.Day)] = s
}

// Get returns the session for a player and day.
func (st *Store) Get(username string, day int) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[sessionKey(username, day)]
	return s, ok
}

// Delete removes a session.
func (st *Store) Delete(username string, day int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, sessionKey(username, day))
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PruneIdle drops sessions untouched for longer than maxIdle and returns how
// many were removed. Run periodically from a background goroutine.
func (st *Store) PruneIdle(maxIdle time.Duration, now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for key, s := range st.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastTouched)
		s.mu.Unlock()
		if idle > maxIdle {
			delete(st.sessions, key)
			removed++
		}
	}
	return removed
}
