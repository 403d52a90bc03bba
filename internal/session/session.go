// Package session tracks connected players. Every session runs its own
// independent game; the registry only bounds how many run at once and
// delivers server-wide notices such as a pending shutdown.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrFull is returned by Register when the session limit is reached.
var ErrFull = errors.New("session: server full")

// EventType identifies a server notice.
type EventType int

const (
	EventShutdown EventType = iota // Server is going down, disconnect soon
)

// Event is a notice sent from the server to a session.
type Event struct {
	Type EventType
}

// Handle represents one connected session.
type Handle struct {
	ID      string
	User    string
	Started time.Time
	Events  chan Event // Closed when the session is unregistered
}

// Registry holds all live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Handle
	limit    int
	now      func() time.Time
}

// NewRegistry creates a registry allowing up to limit concurrent sessions (0 = unlimited).
func NewRegistry(limit int) *Registry {
	return &Registry{
		sessions: make(map[string]*Handle),
		limit:    limit,
		now:      time.Now,
	}
}

// Register adds a session for user and returns its handle.
func (r *Registry) Register(user string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit > 0 && len(r.sessions) >= r.limit {
		return nil, ErrFull
	}

	h := &Handle{
		ID:      uuid.NewString(),
		User:    user,
		Started: r.now(),
		Events:  make(chan Event, 4),
	}
	r.sessions[h.ID] = h
	return h, nil
}

// Unregister removes a session and closes its event channel. Unknown IDs are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.sessions[id]; ok {
		close(h.Events)
		delete(r.sessions, id)
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Shutdown notifies every session that the server is stopping and waits for
// them to disconnect, or for timeout. Returns the number of sessions still
// connected when it gave up.
func (r *Registry) Shutdown(timeout time.Duration) int {
	r.mu.RLock()
	for _, h := range r.sessions {
		select {
		case h.Events <- Event{Type: EventShutdown}:
		default:
		}
	}
	r.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if remaining := r.Count(); remaining == 0 {
			return 0
		}
		select {
		case <-deadline:
			return r.Count()
		case <-ticker.C:
		}
	}
}
