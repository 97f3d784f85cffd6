package circuitbreaker

import (
	"sync"
	"time"
)

// Registry holds one lazily created breaker per service name.
type Registry struct {
	mutex     sync.RWMutex
	breakers  map[string]*CircuitBreaker
	threshold int
	window    time.Duration
	cooldown  time.Duration
}

func NewRegistry(threshold int, window, cooldown time.Duration) *Registry {
	return &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		threshold: threshold,
		window:    window,
		cooldown:  cooldown,
	}
}

// GetBreaker returns the breaker for the service, creating it on first use.
func (r *Registry) GetBreaker(serviceName string) *CircuitBreaker {
	r.mutex.RLock()
	cb, exists := r.breakers[serviceName]
	r.mutex.RUnlock()

	if exists {
		return cb
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Double-check: another goroutine may have created it
	if cb, exists = r.breakers[serviceName]; exists {
		return cb
	}

	cb = NewCircuitBreaker(r.threshold, r.window, r.cooldown)
	r.breakers[serviceName] = cb
	return cb
}

// Remove discards the breaker state for a service. Called when the
// service is unregistered so a later re-registration starts Closed.
func (r *Registry) Remove(serviceName string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.breakers, serviceName)
}

// Reset discards all breaker state.
func (r *Registry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.breakers = make(map[string]*CircuitBreaker)
}

// Stats returns a snapshot of every tracked breaker keyed by service name.
func (r *Registry) Stats() map[string]Snapshot {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	stats := make(map[string]Snapshot, len(r.breakers))
	for name, cb := range r.breakers {
		stats[name] = cb.Snapshot()
	}
	return stats
}
