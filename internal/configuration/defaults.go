package configuration

import (
	"time"

	"github.com/ahrav/go-breakdown/internal/domain"
)

// Default settings.
const (
	DefaultConcurrency       = 4
	DefaultConsoleRows       = 100
	DefaultTemporalHostPort  = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "breakdown"
	DefaultWorkflowTimeout   = 30 * time.Minute
	DefaultHTTPAddr          = ":8080"
	DefaultRequestsPerSecond = 20
	DefaultBurst             = 40
	DefaultMaxBodyBytes      = 32 << 20
	DefaultStream            = "breakdown:events"
)

// DefaultRules are the rules of the reference input layout: Feature_A and
// Feature_C sum the N column, Feature_B counts identifiers.
func DefaultRules() domain.RuleTable {
	return domain.RuleTable{
		"Feature_A": {Kind: domain.RuleSumNumeric, Column: "N"},
		"Feature_B": {Kind: domain.RuleCountIdentifier, Column: "Id"},
		"Feature_C": {Kind: domain.RuleSumNumeric, Column: "N"},
	}
}

// DefaultConfig returns a configuration usable for local runs.
func DefaultConfig() *Config {
	return &Config{
		Scale:       domain.DefaultScale,
		Rules:       DefaultRules(),
		Concurrency: DefaultConcurrency,
		Sinks: SinkConfig{
			ConsoleRows: DefaultConsoleRows,
		},
		Temporal: TemporalConfig{
			HostPort:        DefaultTemporalHostPort,
			Namespace:       DefaultTemporalNamespace,
			TaskQueue:       DefaultTaskQueue,
			WorkflowTimeout: DefaultWorkflowTimeout,
		},
		Events: EventsConfig{
			Stream: DefaultStream,
		},
		HTTP: HTTPConfig{
			Addr:              DefaultHTTPAddr,
			RequestsPerSecond: DefaultRequestsPerSecond,
			Burst:             DefaultBurst,
			MaxBodyBytes:      DefaultMaxBodyBytes,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}
