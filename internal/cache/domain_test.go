package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/coverletter-agent/internal/types"
)

func newTestDomains(t *testing.T) *Domains {
	t.Helper()
	domains, err := NewDomains(DefaultTTLConfig())
	require.NoError(t, err)
	return domains
}

func TestDomain_RawRoundTrip(t *testing.T) {
	d := newTestDomains(t).Style

	_, ok := d.GetRaw(1, "default")
	assert.False(t, ok)

	d.SetRaw(1, "default", "my writing sample")
	got, ok := d.GetRaw(1, "default")
	require.True(t, ok)
	assert.Equal(t, "my writing sample", got)
}

func TestSetLogf_InstallsAcrossDomainsAndLogsReads(t *testing.T) {
	domains := newTestDomains(t)

	var lines []string
	domains.SetLogf(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	domains.Style.GetRaw(1, "default")
	domains.Style.SetRaw(1, "default", "sample")
	domains.Style.GetRaw(1, "default")
	domains.Resume.GetRaw(1, "default")
	domains.Mapping.GetRaw(1, "job-7")

	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "cache miss: style raw")
	assert.Contains(t, lines[1], "cache hit: style raw")
	assert.Contains(t, lines[2], "cache miss: resume raw")
	assert.Contains(t, lines[3], "cache miss: mapping raw")
}

func TestDomain_ProcessedRoundTrip(t *testing.T) {
	d := newTestDomains(t).Style

	profile := types.StyleProfile{
		Tone:            "warm",
		Formality:       "semi-formal",
		SentencePattern: "short declaratives",
		Vocabulary:      []string{"build", "ship"},
	}
	require.NoError(t, d.SetProcessed(1, "default", profile))

	var got types.StyleProfile
	require.True(t, d.GetProcessed(1, "default", &got))
	assert.Equal(t, profile, got)
}

func TestDomain_ProcessedWrongKindIsMiss(t *testing.T) {
	domains := newTestDomains(t)
	d := domains.Style

	// An envelope tagged for a different domain must read as a miss.
	payload, err := json.Marshal(types.ResumeAnalysis{
		Accomplishments: []string{"x"},
		TermFrequencies: map[string]float64{"x": 1},
	})
	require.NoError(t, err)
	env, err := json.Marshal(envelope{Kind: kindResumeAnalysis, Payload: payload})
	require.NoError(t, err)
	domains.Store.Set(d.processedKey(1, "default"), env, time.Minute)

	var got types.StyleProfile
	assert.False(t, d.GetProcessed(1, "default", &got))
}

func TestDomain_ProcessedSchemaMismatchIsMiss(t *testing.T) {
	domains := newTestDomains(t)
	d := domains.Style

	// Right kind tag but payload missing required fields.
	env, err := json.Marshal(envelope{Kind: kindStyleProfile, Payload: json.RawMessage(`{"tone": "warm"}`)})
	require.NoError(t, err)
	domains.Store.Set(d.processedKey(1, "default"), env, time.Minute)

	var got types.StyleProfile
	assert.False(t, d.GetProcessed(1, "default", &got))
}

func TestDomain_ProcessedGarbageIsMiss(t *testing.T) {
	domains := newTestDomains(t)
	d := domains.Style
	domains.Store.Set(d.processedKey(1, "default"), []byte("not json"), time.Minute)

	var got types.StyleProfile
	assert.False(t, d.GetProcessed(1, "default", &got))
}

func TestDomain_Invalidate(t *testing.T) {
	d := newTestDomains(t).Style
	d.SetRaw(1, "default", "raw")
	require.NoError(t, d.SetProcessed(1, "default", types.StyleProfile{
		Tone: "t", Formality: "f", SentencePattern: "p", Vocabulary: []string{},
	}))

	d.Invalidate(1, "default")

	_, ok := d.GetRaw(1, "default")
	assert.False(t, ok)
	var got types.StyleProfile
	assert.False(t, d.GetProcessed(1, "default", &got))
}

func TestLoadOrCompute_ColdPath(t *testing.T) {
	d := newTestDomains(t).Style
	loads, computes := 0, 0

	value, raw, err := LoadOrCompute(context.Background(), d, 1, "default",
		func(context.Context) (string, error) {
			loads++
			return "sample text", nil
		},
		func(_ context.Context, raw string) (types.StyleProfile, error) {
			computes++
			assert.Equal(t, "sample text", raw)
			return types.StyleProfile{Tone: "warm", Formality: "f", SentencePattern: "p", Vocabulary: []string{}}, nil
		},
		types.StyleProfile{},
	)
	require.NoError(t, err)
	assert.Equal(t, "sample text", raw)
	assert.Equal(t, "warm", value.Tone)
	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, computes)

	// Second call hits both tiers.
	_, _, err = LoadOrCompute(context.Background(), d, 1, "default",
		func(context.Context) (string, error) {
			loads++
			return "", nil
		},
		func(context.Context, string) (types.StyleProfile, error) {
			computes++
			return types.StyleProfile{}, nil
		},
		types.StyleProfile{},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, 1, computes)
}

func TestLoadOrCompute_ComputeFailureReturnsFallbackUncached(t *testing.T) {
	d := newTestDomains(t).Mapping
	computes := 0
	fallback := types.AccomplishmentMapping{Matches: []types.RequirementMatch{}}

	compute := func(context.Context, string) (types.AccomplishmentMapping, error) {
		computes++
		return types.AccomplishmentMapping{}, errors.New("model quota exceeded")
	}
	load := func(context.Context) (string, error) { return "resume", nil }

	value, _, err := LoadOrCompute(context.Background(), d, 1, "job7", load, compute, fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, value)

	// The failure was not cached: the next call retries the compute.
	_, _, err = LoadOrCompute(context.Background(), d, 1, "job7", load, compute, fallback)
	require.NoError(t, err)
	assert.Equal(t, 2, computes)
}

func TestLoadOrCompute_LoadFailurePropagates(t *testing.T) {
	d := newTestDomains(t).Resume

	_, _, err := LoadOrCompute(context.Background(), d, 1, "default",
		func(context.Context) (string, error) { return "", errors.New("provider unavailable") },
		func(context.Context, string) (types.ResumeAnalysis, error) { return types.ResumeAnalysis{}, nil },
		types.ResumeAnalysis{},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider unavailable")
}
