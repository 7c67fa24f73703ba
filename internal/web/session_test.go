package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearchart/intake/internal/auth"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore(time.Hour)

	id := s.Put(auth.Identity{UserID: "user-1", Email: "jane@example.com"})
	require.NotEmpty(t, id)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", got.Email)

	_, ok = s.Get("unknown-session")
	assert.False(t, ok)
}

func TestMemoryStoreDistinctIDs(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	a := s.Put(auth.Identity{UserID: "a"})
	b := s.Put(auth.Identity{UserID: "b"})
	assert.NotEqual(t, a, b)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	id := s.Put(auth.Identity{UserID: "user-1"})

	s.Delete(id)
	_, ok := s.Get(id)
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(-time.Second)
	id := s.Put(auth.Identity{UserID: "user-1"})

	_, ok := s.Get(id)
	assert.False(t, ok)
}
