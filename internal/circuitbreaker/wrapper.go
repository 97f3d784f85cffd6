package circuitbreaker

import (
	"context"
	"log/slog"
	"time"

	"github.com/angeloszaimis/api-gateway/internal/service"
)

// Wrapper decorates handler invocation with breaker gating and a per-call
// timeout. It owns the outcome classification: handler errors and timeouts
// feed the breaker, caller cancellation counts as neither.
type Wrapper struct {
	breakers *Registry
	timeout  time.Duration
	logger   *slog.Logger
}

func NewWrapper(breakers *Registry, timeout time.Duration, logger *slog.Logger) *Wrapper {
	return &Wrapper{
		breakers: breakers,
		timeout:  timeout,
		logger:   logger,
	}
}

type result struct {
	resp any
	err  error
}

// Do invokes the handler for serviceName under breaker protection.
//
// When the breaker refuses the call the handler is never invoked and a
// CircuitOpenError is returned. Otherwise the handler runs with a
// deadline; exceeding it is a breaker failure surfaced as TimeoutError,
// a handler error is a breaker failure surfaced as HandlerError, and a
// caller-cancelled call is discarded without touching the failure count.
func (w *Wrapper) Do(ctx context.Context, serviceName string, handler service.Handler, req any) (any, error) {
	cb := w.breakers.GetBreaker(serviceName)

	allowed, wait := cb.Allow()
	if !allowed {
		w.logger.Warn("circuit open, failing fast",
			slog.String("service", serviceName),
			slog.Duration("retry_after", wait))
		return nil, &service.CircuitOpenError{Service: serviceName, RetryAfter: wait}
	}

	callCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resultCh := make(chan result, 1)
	go func() {
		resp, err := handler.Execute(callCtx, req)
		resultCh <- result{resp: resp, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			if ctx.Err() != nil {
				// Caller cancelled while the handler was failing anyway.
				cb.Discard()
				return nil, ctx.Err()
			}
			cb.RecordFailure()
			return nil, &service.HandlerError{Service: serviceName, Err: res.err}
		}
		cb.RecordSuccess()
		return res.resp, nil

	case <-callCtx.Done():
		if ctx.Err() != nil {
			// Cancellation from the caller, not our deadline: the call
			// counts as neither success nor failure.
			cb.Discard()
			return nil, ctx.Err()
		}
		cb.RecordFailure()
		w.logger.Warn("handler timed out",
			slog.String("service", serviceName),
			slog.Duration("timeout", w.timeout))
		return nil, &service.TimeoutError{Service: serviceName, Timeout: w.timeout}
	}
}

// Timeout returns the per-call handler deadline.
func (w *Wrapper) Timeout() time.Duration {
	return w.timeout
}
