package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// envelope is the discriminated payload stored in the processed tier. The
// Kind tag and schema check together gate every processed read; a mismatch
// on either is treated as a miss, never an error.
type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Domain is one named two-tier cache: a raw tier holding verbatim source
// text and a processed tier holding a derived, shape-checked analysis. Keys
// are namespaced by user so tenants never observe each other's entries.
type Domain struct {
	store        *Store
	name         string
	kind         string
	schema       *gojsonschema.Schema
	rawTTL       time.Duration
	processedTTL time.Duration

	// Logf receives hit/miss observability lines. Defaults to a no-op.
	Logf func(format string, args ...any)
}

// NewDomain creates a domain cache over the shared store. schemaJSON is the
// JSON Schema the processed tier payload must satisfy on read.
func NewDomain(store *Store, name, kind, schemaJSON string, rawTTL, processedTTL time.Duration) (*Domain, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s cache schema: %w", name, err)
	}
	return &Domain{
		store:        store,
		name:         name,
		kind:         kind,
		schema:       schema,
		rawTTL:       rawTTL,
		processedTTL: processedTTL,
		Logf:         func(string, ...any) {},
	}, nil
}

func (d *Domain) rawKey(userID int64, scope string) string {
	return fmt.Sprintf("user:%d:%s:%s:raw", userID, d.name, scope)
}

func (d *Domain) processedKey(userID int64, scope string) string {
	return fmt.Sprintf("user:%d:%s:%s:processed", userID, d.name, scope)
}

// GetRaw returns the cached verbatim source text for a scope.
func (d *Domain) GetRaw(userID int64, scope string) (string, bool) {
	value, ok := d.store.Get(d.rawKey(userID, scope))
	if !ok {
		d.Logf("cache miss: %s raw (user=%d scope=%s)", d.name, userID, scope)
		return "", false
	}
	d.Logf("cache hit: %s raw (user=%d scope=%s)", d.name, userID, scope)
	return string(value), true
}

// SetRaw stores verbatim source text for a scope.
func (d *Domain) SetRaw(userID int64, scope, text string) {
	d.store.Set(d.rawKey(userID, scope), []byte(text), d.rawTTL)
}

// GetProcessed reads the processed tier into out. The stored envelope must
// carry this domain's kind tag and its payload must satisfy the domain
// schema; any mismatch is a miss.
func (d *Domain) GetProcessed(userID int64, scope string, out any) bool {
	value, ok := d.store.Get(d.processedKey(userID, scope))
	if !ok {
		d.Logf("cache miss: %s processed (user=%d scope=%s)", d.name, userID, scope)
		return false
	}

	var env envelope
	if err := json.Unmarshal(value, &env); err != nil || env.Kind != d.kind {
		d.Logf("cache miss: %s processed has wrong shape tag (user=%d scope=%s)", d.name, userID, scope)
		return false
	}

	result, err := d.schema.Validate(gojsonschema.NewBytesLoader(env.Payload))
	if err != nil || !result.Valid() {
		d.Logf("cache miss: %s processed failed schema check (user=%d scope=%s)", d.name, userID, scope)
		return false
	}

	if err := json.Unmarshal(env.Payload, out); err != nil {
		d.Logf("cache miss: %s processed failed decode (user=%d scope=%s)", d.name, userID, scope)
		return false
	}
	d.Logf("cache hit: %s processed (user=%d scope=%s)", d.name, userID, scope)
	return true
}

// SetProcessed stores a derived analysis in the processed tier.
func (d *Domain) SetProcessed(userID int64, scope string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s processed value: %w", d.name, err)
	}
	value, err := json.Marshal(envelope{Kind: d.kind, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", d.name, err)
	}
	d.store.Set(d.processedKey(userID, scope), value, d.processedTTL)
	return nil
}

// Invalidate clears both tiers for a scope.
func (d *Domain) Invalidate(userID int64, scope string) {
	d.store.Delete(d.rawKey(userID, scope))
	d.store.Delete(d.processedKey(userID, scope))
}

// LoadOrCompute resolves the processed value for a scope, going through both
// tiers. The raw tier is filled from loadRaw on miss; the processed tier is
// filled from compute on miss. A compute failure returns the fallback value
// without caching it, so the next call retries. A loadRaw failure is
// returned to the caller. The raw text is returned alongside the value.
func LoadOrCompute[T any](ctx context.Context, d *Domain, userID int64, scope string,
	loadRaw func(context.Context) (string, error),
	compute func(context.Context, string) (T, error),
	fallback T,
) (T, string, error) {
	raw, ok := d.GetRaw(userID, scope)
	if !ok {
		loaded, err := loadRaw(ctx)
		if err != nil {
			return fallback, "", fmt.Errorf("loading %s source failed: %w", d.name, err)
		}
		raw = loaded
		d.SetRaw(userID, scope, raw)
	}

	var value T
	if d.GetProcessed(userID, scope, &value) {
		return value, raw, nil
	}

	computed, err := compute(ctx, raw)
	if err != nil {
		d.Logf("compute failed for %s (user=%d scope=%s): %v; using default", d.name, userID, scope, err)
		return fallback, raw, nil
	}
	if err := d.SetProcessed(userID, scope, computed); err != nil {
		d.Logf("failed to cache %s processed value (user=%d scope=%s): %v", d.name, userID, scope, err)
	}
	return computed, raw, nil
}

// InvalidateUser removes every cache entry belonging to a user, across all
// domains and scopes. Called when the user uploads a new source document.
func InvalidateUser(s *Store, userID int64) int {
	prefix := fmt.Sprintf("user:%d:", userID)
	keys := s.KeysMatching(prefix)
	for _, key := range keys {
		s.Delete(key)
	}
	return len(keys)
}
