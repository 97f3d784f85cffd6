package service

import "context"

// Handler represents one backend service behind the gateway.
// Request and response payloads are opaque to the gateway; it only
// classifies the outcome of Execute as success or failure.
type Handler interface {
	Execute(ctx context.Context, req any) (any, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, req any) (any, error)

func (f HandlerFunc) Execute(ctx context.Context, req any) (any, error) {
	return f(ctx, req)
}
