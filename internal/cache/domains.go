package cache

import (
	"fmt"
	"time"
)

// Domain names and envelope kind tags.
const (
	DomainStyle   = "style"
	DomainResume  = "resume"
	DomainMapping = "mapping"

	kindStyleProfile   = "style_profile/v1"
	kindResumeAnalysis = "resume_analysis/v1"
	kindMapping        = "accomplishment_mapping/v1"
)

// styleProfileSchema validates the processed tier of the style domain.
const styleProfileSchema = `{
  "type": "object",
  "required": ["tone", "formality", "sentence_pattern", "vocabulary"],
  "properties": {
    "tone": {"type": "string"},
    "formality": {"type": "string"},
    "sentence_pattern": {"type": "string"},
    "vocabulary": {"type": "array", "items": {"type": "string"}},
    "notes": {"type": "string"}
  }
}`

// resumeAnalysisSchema validates the processed tier of the resume domain.
const resumeAnalysisSchema = `{
  "type": "object",
  "required": ["accomplishments", "term_frequencies"],
  "properties": {
    "accomplishments": {"type": "array", "items": {"type": "string"}},
    "term_frequencies": {
      "type": "object",
      "additionalProperties": {"type": "number"}
    }
  }
}`

// mappingSchema validates the processed tier of the job-mapping domain.
const mappingSchema = `{
  "type": "object",
  "required": ["matches"],
  "properties": {
    "matches": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["requirement", "accomplishments"],
        "properties": {
          "requirement": {"type": "string"},
          "accomplishments": {"type": "array", "items": {"type": "string"}},
          "strength": {"type": "string"}
        }
      }
    }
  }
}`

// TTLConfig holds the independent raw/processed TTLs for the three domains.
type TTLConfig struct {
	StyleRaw         time.Duration
	StyleProcessed   time.Duration
	ResumeRaw        time.Duration
	ResumeProcessed  time.Duration
	MappingRaw       time.Duration
	MappingProcessed time.Duration
}

// DefaultTTLConfig returns production TTL defaults. Style and resume
// analyses change rarely; job mappings are shorter-lived.
func DefaultTTLConfig() TTLConfig {
	return TTLConfig{
		StyleRaw:         24 * time.Hour,
		StyleProcessed:   24 * time.Hour,
		ResumeRaw:        24 * time.Hour,
		ResumeProcessed:  12 * time.Hour,
		MappingRaw:       6 * time.Hour,
		MappingProcessed: 6 * time.Hour,
	}
}

// Domains bundles the shared store and the three domain caches used by the
// pipeline.
type Domains struct {
	Store   *Store
	Style   *Domain
	Resume  *Domain
	Mapping *Domain
}

// NewDomains constructs the shared store and every domain cache.
func NewDomains(ttl TTLConfig) (*Domains, error) {
	store := NewStore()

	style, err := NewDomain(store, DomainStyle, kindStyleProfile, styleProfileSchema, ttl.StyleRaw, ttl.StyleProcessed)
	if err != nil {
		return nil, fmt.Errorf("failed to create style cache: %w", err)
	}
	resume, err := NewDomain(store, DomainResume, kindResumeAnalysis, resumeAnalysisSchema, ttl.ResumeRaw, ttl.ResumeProcessed)
	if err != nil {
		return nil, fmt.Errorf("failed to create resume cache: %w", err)
	}
	mapping, err := NewDomain(store, DomainMapping, kindMapping, mappingSchema, ttl.MappingRaw, ttl.MappingProcessed)
	if err != nil {
		return nil, fmt.Errorf("failed to create mapping cache: %w", err)
	}

	return &Domains{
		Store:   store,
		Style:   style,
		Resume:  resume,
		Mapping: mapping,
	}, nil
}

// SetLogf installs one observability logger across all domains.
func (d *Domains) SetLogf(logf func(format string, args ...any)) {
	d.Style.Logf = logf
	d.Resume.Logf = logf
	d.Mapping.Logf = logf
}
