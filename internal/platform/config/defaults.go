package config

const (
	defaultServerPort = 8080

	defaultBatchWorkers = 4

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":            "0.0.0.0",
		"server.port":            defaultServerPort,
		"server.read_timeout":    "5s",
		"server.write_timeout":   "10s",
		"server.idle_timeout":    "120s",
		"server.request_timeout": "30s",

		"log.level":  "info",
		"log.format": "json",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "entity-routing",

		"routing.max_depth":                0,
		"routing.strict_target_properties": false,
		"routing.batch_workers":            defaultBatchWorkers,

		"store.driver":              DriverMemory,
		"store.sqlite.path":         "orders.db",
		"store.sqlite.busy_timeout": "5s",

		"store.remote.base_url":                        "http://localhost:8081",
		"store.remote.timeout":                         "10s",
		"store.remote.rate_limit":                      0,
		"store.remote.retry.max_attempts":              defaultRetryMaxAttempts,
		"store.remote.retry.initial_interval":          "100ms",
		"store.remote.retry.max_interval":              "5s",
		"store.remote.retry.multiplier":                defaultRetryMultiplier,
		"store.remote.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"store.remote.circuit_breaker.timeout":         "30s",
		"store.remote.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
	}
}
