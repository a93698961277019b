// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/coverletter-agent/internal/cache"
	"github.com/jonathan/coverletter-agent/internal/trimming"
)

// Config holds every tunable of the letter agent. Values are resolved in
// order: JSON config file, environment, defaults. CLI flags are merged on
// top by the command layer.
type Config struct {
	// Credentials and storage
	APIKey      string `json:"api_key,omitempty" validate:"required"`
	DatabaseURL string `json:"database_url,omitempty"`

	// Candidate
	CandidateName string `json:"candidate_name,omitempty" validate:"required"`

	// Documents
	DocumentsDir string `json:"documents_dir,omitempty" validate:"required,dir"`
	TemplatePath string `json:"template_path,omitempty"`
	OutputPath   string `json:"output_path,omitempty"`

	// Pipeline tuning
	WordBudget       int `json:"word_budget,omitempty" validate:"gte=0"`
	WatchdogSeconds  int `json:"watchdog_seconds,omitempty" validate:"gte=0"`
	CacheTTLMinutes  int `json:"cache_ttl_minutes,omitempty" validate:"gte=0"`
	SourceTTLMinutes int `json:"source_ttl_minutes,omitempty" validate:"gte=0"`

	Verbose bool `json:"verbose,omitempty"`
}

// Default returns the configuration used when nothing else is specified.
func Default() *Config {
	return &Config{
		DocumentsDir:    "documents",
		OutputPath:      "cover_letter.txt",
		WordBudget:      trimming.DefaultWordBudget,
		WatchdogSeconds: 15,
	}
}

// Load resolves the configuration. A non-empty path must point to a JSON
// config file; environment variables override file values and defaults fill
// the rest. The result is validated before being returned.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a JSON config file without applying environment or
// defaults.
func LoadFile(path string) (*Config, error) {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// ApplyEnv overrides file values from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("CANDIDATE_NAME"); v != "" {
		c.CandidateName = v
	}
	if v := os.Getenv("DOCUMENTS_DIR"); v != "" {
		c.DocumentsDir = v
	}
	if v := os.Getenv("WORD_BUDGET"); v != "" {
		if budget, err := strconv.Atoi(v); err == nil {
			c.WordBudget = budget
		}
	}
}

// ApplyDefaults fills unset fields with the defaults.
func (c *Config) ApplyDefaults() {
	defaults := Default()
	if c.DocumentsDir == "" {
		c.DocumentsDir = defaults.DocumentsDir
	}
	if c.OutputPath == "" {
		c.OutputPath = defaults.OutputPath
	}
	if c.WordBudget == 0 {
		c.WordBudget = defaults.WordBudget
	}
	if c.WatchdogSeconds == 0 {
		c.WatchdogSeconds = defaults.WatchdogSeconds
	}
}

// Validate checks the configuration and reports the first problem found.
func (c *Config) Validate() error {
	validate := validator.New()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			switch fieldErr.Field() {
			case "APIKey":
				return fmt.Errorf("config error: api key is required (set GEMINI_API_KEY or 'api_key')")
			case "CandidateName":
				return fmt.Errorf("config error: candidate name is required (set CANDIDATE_NAME or 'candidate_name')")
			case "DocumentsDir":
				return fmt.Errorf("config error: documents dir %q does not exist", c.DocumentsDir)
			default:
				return fmt.Errorf("config error: invalid value for %s", fieldErr.Field())
			}
		}
	}
	return fmt.Errorf("config error: %w", err)
}

// WatchdogInterval returns the watchdog period as a duration.
func (c *Config) WatchdogInterval() time.Duration {
	return time.Duration(c.WatchdogSeconds) * time.Second
}

// TTL builds the cache TTL configuration, applying the configured overrides
// on top of the defaults. CacheTTLMinutes covers the processed tiers and
// SourceTTLMinutes the raw document tiers.
func (c *Config) TTL() cache.TTLConfig {
	ttl := cache.DefaultTTLConfig()
	if c.CacheTTLMinutes > 0 {
		processed := time.Duration(c.CacheTTLMinutes) * time.Minute
		ttl.StyleProcessed = processed
		ttl.ResumeProcessed = processed
		ttl.MappingProcessed = processed
	}
	if c.SourceTTLMinutes > 0 {
		raw := time.Duration(c.SourceTTLMinutes) * time.Minute
		ttl.StyleRaw = raw
		ttl.ResumeRaw = raw
		ttl.MappingRaw = raw
	}
	return ttl
}
