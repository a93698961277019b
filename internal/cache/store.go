// Package cache provides the process-wide TTL key/value store and the
// two-tier domain caches built on top of it.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is an in-memory key/value store with per-entry expiry. Entries are
// lazily evicted: a read past expiry deletes the entry and reports absence.
// Contents do not survive process restarts.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set stores a value with absolute expiry now+ttl, overwriting any existing
// entry under the same key.
func (s *Store) Set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
}

// Get returns the value for key. An expired entry is removed and reported
// as absent.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// KeysMatching returns every live key containing the given substring,
// evicting expired entries encountered along the way.
func (s *Store) KeysMatching(substr string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			continue
		}
		if strings.Contains(key, substr) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	now := s.now()
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			continue
		}
		count++
	}
	return count
}
