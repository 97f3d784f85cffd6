// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including server settings, circuit breaker tuning, handler timeouts, and the
// upstream services to register at startup.
package config
