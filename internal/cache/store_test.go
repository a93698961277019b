package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetGet(t *testing.T) {
	s := NewStore()
	s.Set("a", []byte("value"), time.Minute)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestStore_SetOverwrites(t *testing.T) {
	s := NewStore()
	s.Set("a", []byte("first"), time.Minute)
	s.Set("a", []byte("second"), time.Minute)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestStore_TTLExpiry(t *testing.T) {
	s := NewStore()
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Set("a", []byte("value"), 10*time.Second)

	// Before expiry the value is retrievable.
	s.now = func() time.Time { return base.Add(9 * time.Second) }
	_, ok := s.Get("a")
	assert.True(t, ok)

	// Past expiry the entry behaves as absent and is removed.
	s.now = func() time.Time { return base.Add(11 * time.Second) }
	_, ok = s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())

	// Even after winding the clock back, the entry is gone.
	s.now = func() time.Time { return base }
	_, ok = s.Get("a")
	assert.False(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	s.Set("a", []byte("value"), time.Minute)
	s.Delete("a")

	_, ok := s.Get("a")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	s.Delete("a")
}

func TestStore_KeysMatching(t *testing.T) {
	s := NewStore()
	s.Set("user:1:style:default:raw", []byte("x"), time.Minute)
	s.Set("user:1:resume:default:raw", []byte("x"), time.Minute)
	s.Set("user:2:style:default:raw", []byte("x"), time.Minute)

	keys := s.KeysMatching("user:1:")
	assert.Len(t, keys, 2)
	assert.ElementsMatch(t, []string{
		"user:1:style:default:raw",
		"user:1:resume:default:raw",
	}, keys)
}

func TestStore_KeysMatchingSkipsExpired(t *testing.T) {
	s := NewStore()
	base := time.Now()
	s.now = func() time.Time { return base }

	s.Set("user:1:a", []byte("x"), time.Second)
	s.Set("user:1:b", []byte("x"), time.Hour)

	s.now = func() time.Time { return base.Add(time.Minute) }
	keys := s.KeysMatching("user:1:")
	assert.Equal(t, []string{"user:1:b"}, keys)
}

func TestInvalidateUser_Namespacing(t *testing.T) {
	s := NewStore()
	s.Set("user:1:style:default:raw", []byte("a"), time.Minute)
	s.Set("user:1:mapping:job42:processed", []byte("b"), time.Minute)
	s.Set("user:2:style:default:raw", []byte("c"), time.Minute)

	removed := InvalidateUser(s, 1)
	assert.Equal(t, 2, removed)

	_, ok := s.Get("user:1:style:default:raw")
	assert.False(t, ok)
	_, ok = s.Get("user:1:mapping:job42:processed")
	assert.False(t, ok)

	// User 2's entries are untouched.
	got, ok := s.Get("user:2:style:default:raw")
	require.True(t, ok)
	assert.Equal(t, []byte("c"), got)
}

func TestInvalidateUser_PrefixDoesNotOvermatch(t *testing.T) {
	s := NewStore()
	s.Set("user:1:style:default:raw", []byte("a"), time.Minute)
	s.Set("user:11:style:default:raw", []byte("b"), time.Minute)

	InvalidateUser(s, 1)

	_, ok := s.Get("user:11:style:default:raw")
	assert.True(t, ok)
}
