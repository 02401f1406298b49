// /internal/session/store.go
package session

import "sync"

// Store maps a guild ID to at most one live playback session. Only the
// session machinery for a given guild writes that guild's key.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (st *Store) Get(guildID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[guildID]
	return s, ok
}

// Put registers a session for a guild. If an entry was already present it is
// returned so the caller can tear it down; the store never silently drops a
// live session.
func (st *Store) Put(guildID string, s *Session) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	prev := st.sessions[guildID]
	st.sessions[guildID] = s
	return prev
}

// Remove deletes the entry for a guild, but only if it still points at s.
// A session being torn down must not evict a replacement that has already
// taken its slot.
func (st *Store) Remove(guildID string, s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.sessions[guildID] == s {
		delete(st.sessions, guildID)
	}
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// All returns a snapshot of the live sessions.
func (st *Store) All() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}
