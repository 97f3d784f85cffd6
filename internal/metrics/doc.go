// Package metrics provides real-time metrics collection for the gateway.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Request counts per service
//   - Outcome counts per service (success, handler_error, timeout,
//     circuit_open, not_found, validation, cancelled)
//   - Response times with percentile calculations (P50, P95, P99)
//
// The collector runs in a dedicated goroutine and processes events without
// blocking the request path. Events are sent via buffered channels with
// non-blocking semantics so a full buffer drops events instead of slowing
// requests down.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.EventChannel() <- metrics.MetricEvent{
//		Type:     metrics.EventRequestCompleted,
//		Service:  "UserService",
//		Outcome:  metrics.OutcomeSuccess,
//		Duration: 150 * time.Millisecond,
//	}
//
//	snapshot := collector.Snapshot()
//
// The collector supports graceful shutdown with event draining to prevent
// data loss.
package metrics
