package service

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed (currently: empty) service name.
type ValidationError struct {
	Service string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid service name %q: %s", e.Service, e.Reason)
}

// NotFoundError reports that no handler is registered under the name.
type NotFoundError struct {
	Service string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service %q not found", e.Service)
}

// CircuitOpenError reports that the breaker refused the call without
// invoking the handler. RetryAfter is a hint for how long the breaker
// stays open; it is zero when the half-open trial slot was taken.
type CircuitOpenError struct {
	Service    string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("service %q unavailable: circuit open", e.Service)
}

// TimeoutError reports that the handler exceeded the configured deadline.
// The breaker counts it as a failure.
type TimeoutError struct {
	Service string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("service %q timed out after %s", e.Service, e.Timeout)
}

// HandlerError reports that the handler ran and returned a failure.
type HandlerError struct {
	Service string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("service %q failed: %v", e.Service, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
