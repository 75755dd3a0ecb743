package configuration

import (
	"fmt"
	"strconv"
	"strings"
)

// applyEnv overrides cfg with BREAKDOWN_* variables found through lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("BREAKDOWN_SCALE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("BREAKDOWN_SCALE: %w", err)
		}
		cfg.Scale = n
	}
	if v, ok := lookup("BREAKDOWN_FEATURES"); ok {
		cfg.Features = nil
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.Features = append(cfg.Features, f)
			}
		}
	}
	if v, ok := lookup("BREAKDOWN_EVENTS_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BREAKDOWN_EVENTS_ENABLED: %w", err)
		}
		cfg.Events.Enabled = b
	}

	str("BREAKDOWN_INPUT", &cfg.Source.Path)
	str("BREAKDOWN_TEMPORAL_HOSTPORT", &cfg.Temporal.HostPort)
	str("BREAKDOWN_TEMPORAL_NAMESPACE", &cfg.Temporal.Namespace)
	str("BREAKDOWN_TASK_QUEUE", &cfg.Temporal.TaskQueue)
	str("BREAKDOWN_REDIS_ADDR", &cfg.Events.RedisAddr)
	str("BREAKDOWN_REDIS_PASSWORD", &cfg.Events.RedisPassword)
	str("BREAKDOWN_TENANT_ID", &cfg.Events.TenantID)
	str("BREAKDOWN_HTTP_ADDR", &cfg.HTTP.Addr)
	str("BREAKDOWN_LOG_LEVEL", &cfg.Observability.LogLevel)
	str("BREAKDOWN_LOG_FORMAT", &cfg.Observability.LogFormat)
	return nil
}
