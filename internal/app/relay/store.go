package relay

import (
	"sync"

	"github.com/osa030/playrelay/internal/domain/playback"
	"github.com/osa030/playrelay/internal/infra/metrics"
)

// Store manages per-device sessions with thread-safe access.
// A single mutex guards the map and every session in it; the Tracker and
// debounce timer callbacks all serialize through it. Sessions are created
// lazily and live for the process lifetime (growth is bounded by the number
// of distinct devices seen).
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates a new session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for the device, creating it on first use.
func (st *Store) GetOrCreate(deviceID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.getOrCreateLocked(deviceID)
}

// getOrCreateLocked returns the session for the device without acquiring the
// lock. Must be called with st.mu held.
func (st *Store) getOrCreateLocked(deviceID string) *Session {
	s, ok := st.sessions[deviceID]
	if !ok {
		s = &Session{
			DeviceID: deviceID,
			State:    playback.StateIdle,
		}
		st.sessions[deviceID] = s
		metrics.SessionsActive.Inc()
	}
	return s
}

// getLocked returns the session for the device, or nil if none exists.
// Must be called with st.mu held.
func (st *Store) getLocked(deviceID string) *Session {
	return st.sessions[deviceID]
}

// Snapshot returns a copy of the device's session taken under the lock,
// or false if the device has never been seen.
func (st *Store) Snapshot(deviceID string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[deviceID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Count returns the number of tracked sessions.
func (st *Store) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
