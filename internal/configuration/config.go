// Package configuration loads and validates the breakdown service settings.
package configuration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-breakdown/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds every setting of the CLI, HTTP API and Temporal worker.
type Config struct {
	// Scale is the rounding granularity; 1000 yields three decimal places.
	Scale int64 `json:"scale" validate:"min=1"`

	// Features lists the features to process in order. Empty means every
	// feature column of the input table.
	Features []string `json:"features" validate:"unique,dive,required"`

	// Rules maps feature names to their aggregation rule.
	Rules domain.RuleTable `json:"rules" validate:"dive"`

	// DefaultRule applies to features missing from Rules. When nil, such a
	// feature fails with a configuration error.
	DefaultRule *domain.RuleSpec `json:"default_rule,omitempty"`

	// Concurrency bounds how many features are computed in parallel in-process.
	Concurrency int `json:"concurrency" validate:"min=1"`

	Source        SourceConfig        `json:"source"`
	Sinks         SinkConfig          `json:"sinks"`
	Temporal      TemporalConfig      `json:"temporal"`
	Events        EventsConfig        `json:"events"`
	HTTP          HTTPConfig          `json:"http"`
	Observability ObservabilityConfig `json:"observability"`
}

// SourceConfig locates the input table.
type SourceConfig struct {
	Path      string `json:"path"`
	HasHeader bool   `json:"has_header"`
}

// SinkConfig selects where results are written.
type SinkConfig struct {
	// ConsoleRows is how many rows are printed; 0 disables console output.
	ConsoleRows int    `json:"console_rows" validate:"min=0"`
	CSVPath     string `json:"csv_path"`
	SQLitePath  string `json:"sqlite_path"`
}

// TemporalConfig locates the Temporal cluster.
type TemporalConfig struct {
	HostPort        string        `json:"host_port" validate:"required,hostname_port"`
	Namespace       string        `json:"namespace" validate:"required"`
	TaskQueue       string        `json:"task_queue" validate:"required"`
	WorkflowTimeout time.Duration `json:"workflow_timeout" validate:"min=0"`
}

// EventsConfig controls event emission to a Redis stream.
type EventsConfig struct {
	Enabled       bool   `json:"enabled"`
	RedisAddr     string `json:"redis_addr" validate:"required_if=Enabled true"`
	RedisPassword string `json:"-"` // Sensitive, read from the environment only.
	RedisDB       int    `json:"redis_db" validate:"min=0"`
	Stream        string `json:"stream"`
	TenantID      string `json:"tenant_id" validate:"omitempty,uuid"`
}

// HTTPConfig controls the HTTP API.
type HTTPConfig struct {
	Addr              string  `json:"addr" validate:"required"`
	RequestsPerSecond float64 `json:"requests_per_second" validate:"min=0"`
	Burst             int     `json:"burst" validate:"min=0"`
	MaxBodyBytes      int64   `json:"max_body_bytes" validate:"min=1"`
}

// ObservabilityConfig controls process logging.
type ObservabilityConfig struct {
	LogLevel  string `json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `json:"log_format" validate:"oneof=json text"`
}

// Validate checks every constraint of the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.DefaultRule != nil {
		if err := validate.Struct(c.DefaultRule); err != nil {
			return fmt.Errorf("invalid configuration: default_rule: %w", err)
		}
	}
	return nil
}

// Load builds a configuration from DefaultConfig, the JSON file at path (if
// path is non-empty) and BREAKDOWN_* environment variables, in that order of
// precedence from lowest to highest.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveRules returns the rule table for features: the configured rules,
// plus DefaultRule for features without one when it is set.
func (c *Config) ResolveRules(features []string) domain.RuleTable {
	rules := make(domain.RuleTable, len(c.Rules))
	maps.Copy(rules, c.Rules)
	if c.DefaultRule == nil {
		return rules
	}
	for _, f := range features {
		if _, ok := rules[f]; !ok {
			rules[f] = *c.DefaultRule
		}
	}
	return rules
}

// ResolveFeatures returns the configured feature list, or available when
// none is configured.
func (c *Config) ResolveFeatures(available []string) []string {
	if len(c.Features) > 0 {
		return c.Features
	}
	return available
}
