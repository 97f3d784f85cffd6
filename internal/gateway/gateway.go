package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/angeloszaimis/api-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/api-gateway/internal/metrics"
	"github.com/angeloszaimis/api-gateway/internal/registry"
	"github.com/angeloszaimis/api-gateway/internal/router"
	"github.com/angeloszaimis/api-gateway/internal/service"
)

// Options configures the gateway's resilience behavior. Zero fields fall
// back to the defaults below.
type Options struct {
	FailureThreshold int
	FailureWindow    time.Duration
	Cooldown         time.Duration
	HandlerTimeout   time.Duration
}

const (
	DefaultFailureThreshold = 5
	DefaultFailureWindow    = time.Minute
	DefaultCooldown         = 30 * time.Second
	DefaultHandlerTimeout   = 5 * time.Second
)

func (o Options) withDefaults() Options {
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = DefaultFailureThreshold
	}
	if o.FailureWindow <= 0 {
		o.FailureWindow = DefaultFailureWindow
	}
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	if o.HandlerTimeout <= 0 {
		o.HandlerTimeout = DefaultHandlerTimeout
	}
	return o
}

// Gateway is the single entry point for routed requests. It owns the
// service registry and the per-service breaker state and tears both down
// together on Close.
type Gateway struct {
	registry  *registry.Registry
	breakers  *circuitbreaker.Registry
	router    *router.Router
	collector *metrics.Collector
	logger    *slog.Logger
}

// New composes a gateway from its parts. collector may be nil when no
// metrics pipeline is wanted.
func New(logger *slog.Logger, collector *metrics.Collector, opts Options) *Gateway {
	opts = opts.withDefaults()

	breakers := circuitbreaker.NewRegistry(opts.FailureThreshold, opts.FailureWindow, opts.Cooldown)
	reg := registry.New(breakers.Remove)
	wrapper := circuitbreaker.NewWrapper(breakers, opts.HandlerTimeout, logger)

	return &Gateway{
		registry:  reg,
		breakers:  breakers,
		router:    router.New(reg, wrapper, logger),
		collector: collector,
		logger:    logger,
	}
}

// RegisterService binds a handler to a service name. Registering an
// existing name replaces its handler (last write wins).
func (g *Gateway) RegisterService(name string, handler service.Handler) error {
	if err := g.registry.Register(name, handler); err != nil {
		return err
	}

	g.logger.Info("service registered", slog.String("service", name))
	return nil
}

// UnregisterService removes a service and discards its breaker state.
// Unknown names are a no-op.
func (g *Gateway) UnregisterService(name string) {
	g.registry.Unregister(name)
	g.logger.Info("service unregistered", slog.String("service", name))
}

// Handle routes a request to the named service and returns its response.
// Every error is typed and carries the service name; the gateway never
// retries on the caller's behalf.
func (g *Gateway) Handle(ctx context.Context, name string, req any) (any, error) {
	g.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Service:   name,
	})

	start := time.Now()
	resp, err := g.router.Route(ctx, name, req)
	duration := time.Since(start)

	g.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventRequestCompleted,
		Timestamp: time.Now(),
		Service:   name,
		Outcome:   outcomeOf(err),
		Duration:  duration,
	})

	if err != nil {
		g.logger.Debug("request failed",
			slog.String("service", name),
			slog.String("outcome", outcomeOf(err)),
			slog.Duration("duration", duration),
			slog.Any("err", err))
	}

	return resp, err
}

// Services returns the names of all registered services.
func (g *Gateway) Services() []string {
	return g.registry.Names()
}

// BreakerStats exposes current breaker state per service.
func (g *Gateway) BreakerStats() map[string]circuitbreaker.Snapshot {
	return g.breakers.Stats()
}

// Close unregisters every service and discards all breaker state.
func (g *Gateway) Close() {
	for _, name := range g.registry.Names() {
		g.registry.Unregister(name)
	}
	g.breakers.Reset()
	g.logger.Info("gateway closed")
}

func (g *Gateway) emitEvent(event metrics.MetricEvent) {
	if g.collector == nil {
		return
	}

	select {
	case g.collector.EventChannel() <- event:
	default:
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}

	var (
		verr *service.ValidationError
		nerr *service.NotFoundError
		oerr *service.CircuitOpenError
		terr *service.TimeoutError
		herr *service.HandlerError
	)

	switch {
	case errors.As(err, &verr):
		return metrics.OutcomeValidation
	case errors.As(err, &nerr):
		return metrics.OutcomeNotFound
	case errors.As(err, &oerr):
		return metrics.OutcomeCircuitOpen
	case errors.As(err, &terr):
		return metrics.OutcomeTimeout
	case errors.As(err, &herr):
		return metrics.OutcomeHandlerError
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	default:
		return metrics.OutcomeHandlerError
	}
}
