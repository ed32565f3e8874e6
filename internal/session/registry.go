package session

import (
	"sync"
	"time"

	"github.com/ayusman/drishti/internal/track"
)

// Registry is the set of live sessions, keyed by client-chosen
// identifier. Sessions are created lazily on first use and live until
// process exit; per-session state is bounded by tracker eviction, so an
// abandoned session costs a few kilobytes at most.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	config   track.Config
}

// NewRegistry creates a Registry whose sessions use the given tracker
// configuration.
func NewRegistry(config track.Config) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		config:   config,
	}
}

// Ensure returns the session with the given identifier, creating it if
// it does not exist yet.
func (r *Registry) Ensure(id string, now time.Time) *Session {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s
	}
	s = New(id, r.config, now)
	r.sessions[id] = s
	return s
}

// Get returns the session with the given identifier, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Stats returns the statistics for a session. An unknown identifier
// yields zeroed statistics rather than an error: asking about a session
// that never processed a frame is a valid question with an empty answer.
func (r *Registry) Stats(id string, now time.Time) Stats {
	s := r.Get(id)
	if s == nil {
		return Stats{}
	}
	return s.Stats(now)
}

// Reset clears a session's state. Resetting an unknown session is a
// no-op; the identifier stays valid for future frames either way.
func (r *Registry) Reset(id string, now time.Time) {
	s := r.Get(id)
	if s == nil {
		return
	}
	s.Reset(now)
}

// Latest returns the most recent frame result for a session, or nil with
// a zero time when the session is unknown or has not processed a frame.
func (r *Registry) Latest(id string) (*Result, time.Time) {
	s := r.Get(id)
	if s == nil {
		return nil, time.Time{}
	}
	return s.Latest()
}
