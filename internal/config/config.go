// Package config provides configuration loading and validation for the
// matching service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the service configuration loadable from a JSON file. All
// fields are optional; missing values use defaults or come from flags and
// environment variables.
type Config struct {
	// Server
	Addr string `json:"addr,omitempty"` // HTTP listen address

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL; empty runs in-memory

	// Matching limits
	MaxJobs       int `json:"max_jobs,omitempty"`       // Corpus cap per request
	MaxConcurrent int `json:"max_concurrent,omitempty"` // Parallel matching passes
	TimeoutSecs   int `json:"timeout_secs,omitempty"`   // Per-request matching budget

	// Result cache
	CacheTTLMinutes int `json:"cache_ttl_minutes,omitempty"`
	CacheCapacity   int `json:"cache_capacity,omitempty"`

	// Fusion weight overrides; zero values keep the built-in defaults.
	SemanticWeight float64 `json:"semantic_weight,omitempty"`
	LexicalWeight  float64 `json:"lexical_weight,omitempty"`
	SkillWeight    float64 `json:"skill_weight,omitempty"`

	// Logging
	Verbose  bool `json:"verbose,omitempty"`   // Debug-level logging
	JSONLogs bool `json:"json_logs,omitempty"` // JSON log encoding
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		MaxJobs:         500,
		MaxConcurrent:   4,
		TimeoutSecs:     30,
		CacheTTLMinutes: 30,
		CacheCapacity:   100,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// ApplyEnv overlays environment variables onto the config. Explicit JSON
// values win over the environment.
func (c *Config) ApplyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Addr == "" {
		c.Addr = os.Getenv("MATCHER_ADDR")
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MaxJobs < 0 {
		return fmt.Errorf("config error: 'max_jobs' must be non-negative")
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("config error: 'max_concurrent' must be non-negative")
	}
	if c.TimeoutSecs < 0 {
		return fmt.Errorf("config error: 'timeout_secs' must be non-negative")
	}
	if c.CacheTTLMinutes < 0 {
		return fmt.Errorf("config error: 'cache_ttl_minutes' must be non-negative")
	}
	if c.CacheCapacity < 0 {
		return fmt.Errorf("config error: 'cache_capacity' must be non-negative")
	}
	if c.SemanticWeight < 0 || c.LexicalWeight < 0 || c.SkillWeight < 0 {
		return fmt.Errorf("config error: fusion weights must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Config-file values act as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.MaxJobs == 0 {
		result.MaxJobs = defaults.MaxJobs
	}
	if result.MaxConcurrent == 0 {
		result.MaxConcurrent = defaults.MaxConcurrent
	}
	if result.TimeoutSecs == 0 {
		result.TimeoutSecs = defaults.TimeoutSecs
	}
	if result.CacheTTLMinutes == 0 {
		result.CacheTTLMinutes = defaults.CacheTTLMinutes
	}
	if result.CacheCapacity == 0 {
		result.CacheCapacity = defaults.CacheCapacity
	}

	if result.SemanticWeight == 0 {
		result.SemanticWeight = defaults.SemanticWeight
	}
	if result.LexicalWeight == 0 {
		result.LexicalWeight = defaults.LexicalWeight
	}
	if result.SkillWeight == 0 {
		result.SkillWeight = defaults.SkillWeight
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Weights reports whether the config overrides the fusion weights and the
// override values.
func (c *Config) Weights() (semantic, lexical, skill float64, ok bool) {
	if c.SemanticWeight == 0 && c.LexicalWeight == 0 && c.SkillWeight == 0 {
		return 0, 0, 0, false
	}
	return c.SemanticWeight, c.LexicalWeight, c.SkillWeight, true
}
