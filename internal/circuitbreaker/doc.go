// Package circuitbreaker implements per-service circuit breaking for the
// gateway.
//
// A circuit breaker stops invoking a failing service for a cooldown period
// to limit cascading failure. It has three states:
//
//   - CLOSED: Normal operation, requests pass through
//   - OPEN: Service failing, requests refused without invoking it
//   - HALF-OPEN: One trial request probes whether the service recovered
//
// Usage:
//
//	breakers := circuitbreaker.NewRegistry(5, time.Minute, 30*time.Second)
//	wrapper := circuitbreaker.NewWrapper(breakers, 5*time.Second, logger)
//	resp, err := wrapper.Do(ctx, "UserService", handler, req)
//
// The wrapper classifies every outcome: handler errors and timeouts count
// as breaker failures, successes reset the breaker, and caller-cancelled
// calls count as neither.
package circuitbreaker
