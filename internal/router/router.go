package router

import (
	"context"
	"log/slog"

	"github.com/angeloszaimis/api-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/api-gateway/internal/registry"
	"github.com/angeloszaimis/api-gateway/internal/service"
)

// Router resolves a service name through the registry and forwards the
// request to its handler through the resilience wrapper.
type Router struct {
	registry *registry.Registry
	wrapper  *circuitbreaker.Wrapper
	logger   *slog.Logger
}

func New(reg *registry.Registry, wrapper *circuitbreaker.Wrapper, logger *slog.Logger) *Router {
	return &Router{
		registry: reg,
		wrapper:  wrapper,
		logger:   logger,
	}
}

// Route dispatches the request to the service registered under name.
// Matching is exact-name only; wildcard and prefix routing are not
// supported. On a lookup miss nothing is invoked and a NotFoundError is
// returned.
func (r *Router) Route(ctx context.Context, name string, req any) (any, error) {
	if name == "" {
		return nil, &service.ValidationError{Service: name, Reason: "name must not be empty"}
	}

	handler, ok := r.registry.Lookup(name)
	if !ok {
		r.logger.Debug("no handler registered", slog.String("service", name))
		return nil, &service.NotFoundError{Service: name}
	}

	return r.wrapper.Do(ctx, name, handler, req)
}
