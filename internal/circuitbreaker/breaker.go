package circuitbreaker

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Blocking requests
	StateHalfOpen              // Testing with one trial request
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a point-in-time view of a breaker for metrics and admin surfaces.
type Snapshot struct {
	State    State     `json:"state"`
	Failures int       `json:"consecutive_failures"`
	OpenedAt time.Time `json:"opened_at,omitzero"`
}

// CircuitBreaker tracks consecutive failures for one service and decides
// whether calls may pass through.
//
// Closed: calls pass; failureThreshold consecutive failures within
// failureWindow trip it to Open. Open: calls are refused until cooldown
// has elapsed since openedAt, then the next Allow moves to HalfOpen and
// admits a single trial. HalfOpen: exactly one trial in flight at a time;
// success closes the breaker, failure reopens it.
type CircuitBreaker struct {
	mutex sync.Mutex

	state         State
	failures      int
	lastFailure   time.Time
	openedAt      time.Time
	probeInFlight bool

	failureThreshold int
	failureWindow    time.Duration
	cooldown         time.Duration
	now              func() time.Time
}

func NewCircuitBreaker(threshold int, window, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: threshold,
		failureWindow:    window,
		cooldown:         cooldown,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed. In the Open state it also
// returns how long the breaker remains open so callers can surface a
// retry hint; wait is zero whenever allowed is true or the half-open
// trial slot is taken.
func (cb *CircuitBreaker) Allow() (allowed bool, wait time.Duration) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.state {
	case StateClosed:
		return true, 0
	case StateOpen:
		elapsed := cb.now().Sub(cb.openedAt)
		if elapsed >= cb.cooldown {
			cb.state = StateHalfOpen
			cb.probeInFlight = true
			return true, 0
		}
		return false, cb.cooldown - elapsed
	case StateHalfOpen:
		if cb.probeInFlight {
			return false, 0
		}
		cb.probeInFlight = true
		return true, 0
	default:
		return true, 0
	}
}

// RecordSuccess closes the breaker and resets the failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures = 0
	cb.state = StateClosed
	cb.probeInFlight = false
}

// RecordFailure counts one failure. In HalfOpen the breaker reopens
// immediately; in Closed it opens once the consecutive count reaches
// the threshold. Failures separated by more than the rolling window
// restart the count.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	now := cb.now()

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.openedAt = now
		cb.probeInFlight = false
		cb.lastFailure = now
		return
	}

	if cb.failureWindow > 0 && !cb.lastFailure.IsZero() && now.Sub(cb.lastFailure) > cb.failureWindow {
		cb.failures = 0
	}

	cb.failures++
	cb.lastFailure = now

	if cb.failures >= cb.failureThreshold {
		cb.state = StateOpen
		cb.openedAt = now
	}
}

// Discard releases a previously allowed call without counting it as
// success or failure. Used for caller-cancelled calls so cancellation
// cannot corrupt the state machine.
func (cb *CircuitBreaker) Discard() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.probeInFlight = false
}

func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	return Snapshot{
		State:    cb.state,
		Failures: cb.failures,
		OpenedAt: cb.openedAt,
	}
}
