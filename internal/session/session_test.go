package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(time.Hour)

	token := m.Create("admin")
	require.NotEmpty(t, token)

	user, ok := m.Validate(token)
	assert.True(t, ok)
	assert.Equal(t, "admin", user)

	m.Destroy(token)

	_, ok = m.Validate(token)
	assert.False(t, ok, "a destroyed token never validates again")
}

func TestManagerUnknownToken(t *testing.T) {
	m := NewManager(time.Hour)

	_, ok := m.Validate("never-issued")
	assert.False(t, ok)

	m.Destroy("never-issued") // no-op
}

func TestManagerTokensAreUnique(t *testing.T) {
	m := NewManager(time.Hour)

	seen := make(map[string]bool)
	for range 100 {
		token := m.Create("admin")
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestManagerExpiry(t *testing.T) {
	const ttl = time.Hour

	start := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	now := start

	m := NewManager(ttl)
	m.now = func() time.Time { return now }

	token := m.Create("admin")

	t.Run("AcceptedJustBeforeExpiry", func(t *testing.T) {
		now = start.Add(ttl - time.Second)
		user, ok := m.Validate(token)
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
	})

	t.Run("RejectedAtExpiry", func(t *testing.T) {
		now = start.Add(ttl)
		_, ok := m.Validate(token)
		assert.False(t, ok, "expiry is absolute from creation, not sliding")
	})

	t.Run("StaysRejected", func(t *testing.T) {
		now = start.Add(ttl + time.Second)
		_, ok := m.Validate(token)
		assert.False(t, ok)
	})
}

func TestManagerExpiryIsAbsolute(t *testing.T) {
	const ttl = time.Hour

	start := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	now := start

	m := NewManager(ttl)
	m.now = func() time.Time { return now }

	token := m.Create("admin")

	// validating repeatedly must not push the deadline out
	for i := range 4 {
		now = start.Add(time.Duration(i) * 20 * time.Minute)
		m.Validate(token)
	}

	now = start.Add(ttl + time.Second)
	_, ok := m.Validate(token)
	assert.False(t, ok)
}
