// Package router resolves service names against the registry and
// dispatches requests through the circuit breaker wrapper. It performs
// exact-name matching only.
package router
