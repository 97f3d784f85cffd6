// Package gateway composes the service registry, router, and circuit
// breaker into the single entry point an external transport layer calls.
// The gateway owns its registry and breaker state for the process
// lifetime and tears them down together on Close.
package gateway
