package metrics

import (
	"maps"
	"sort"
	"sync"
	"time"
)

// Outcome labels for completed requests.
const (
	OutcomeSuccess      = "success"
	OutcomeHandlerError = "handler_error"
	OutcomeTimeout      = "timeout"
	OutcomeCircuitOpen  = "circuit_open"
	OutcomeNotFound     = "not_found"
	OutcomeValidation   = "validation"
	OutcomeCancelled    = "cancelled"
)

type Metrics struct {
	mutex         sync.RWMutex
	requests      map[string]int64
	outcomes      map[string]map[string]int64
	responseTimes map[string][]time.Duration
	startTime     time.Time
}

type Snapshot struct {
	TotalRequests int64                     `json:"total_requests"`
	Uptime        time.Duration             `json:"uptime"`
	Services      map[string]ServiceMetrics `json:"services"`
}

type ServiceMetrics struct {
	Requests    int64            `json:"requests"`
	Outcomes    map[string]int64 `json:"outcomes"`
	AvgResponse time.Duration    `json:"avg_response"`
	P50Response time.Duration    `json:"p50_response"`
	P95Response time.Duration    `json:"p95_response"`
	P99Response time.Duration    `json:"p99_response"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		requests:      make(map[string]int64),
		outcomes:      make(map[string]map[string]int64),
		responseTimes: make(map[string][]time.Duration),
		startTime:     time.Now(),
	}
}

func (m *Metrics) IncrementRequests(serviceName string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.requests[serviceName]++
}

// RecordOutcome counts a completed request. The duration is only kept for
// outcomes where the handler actually ran (success, handler_error, timeout).
func (m *Metrics) RecordOutcome(serviceName, outcome string, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.outcomes[serviceName] == nil {
		m.outcomes[serviceName] = make(map[string]int64)
	}
	m.outcomes[serviceName][outcome]++

	switch outcome {
	case OutcomeSuccess, OutcomeHandlerError, OutcomeTimeout:
		m.responseTimes[serviceName] = append(m.responseTimes[serviceName], duration)
		if len(m.responseTimes[serviceName]) > 1000 {
			m.responseTimes[serviceName] = m.responseTimes[serviceName][1:]
		}
	}
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		Uptime:   time.Since(m.startTime),
		Services: make(map[string]ServiceMetrics),
	}

	// Collect all service names seen by any metric
	allServices := make(map[string]bool)
	for name := range m.requests {
		allServices[name] = true
	}
	for name := range m.outcomes {
		allServices[name] = true
	}
	for name := range m.responseTimes {
		allServices[name] = true
	}

	for name := range allServices {
		snap.TotalRequests += m.requests[name]

		// Copy under the lock; the collector keeps mutating its maps
		// after Snapshot returns.
		sm := ServiceMetrics{
			Requests: m.requests[name],
			Outcomes: maps.Clone(m.outcomes[name]),
		}

		durations := m.responseTimes[name]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			sm.AvgResponse = average(sorted)
			sm.P50Response = percentile(sorted, 0.50)
			sm.P95Response = percentile(sorted, 0.95)
			sm.P99Response = percentile(sorted, 0.99)
		}

		snap.Services[name] = sm
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
