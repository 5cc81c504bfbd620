// Package session holds server-side login state. Sessions live in memory
// only; a process restart logs everyone out, which is acceptable for a
// single-operator registration event.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	username  string
	expiresAt time.Time
}

// Manager issues opaque tokens and maps them back to usernames. Expiry is
// absolute from creation, not sliding.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a fresh token for username.
func (m *Manager) Create(username string) string {
	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[token] = entry{
		username:  username,
		expiresAt: m.now().Add(m.ttl),
	}

	return token
}

// Validate resolves a token to its username. Expired entries are dropped on
// touch.
func (m *Manager) Validate(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[token]
	if !ok {
		return "", false
	}

	if !m.now().Before(e.expiresAt) {
		delete(m.sessions, token)
		return "", false
	}

	return e.username, true
}

// Destroy invalidates a token. Unknown tokens are a no-op.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
}
