// Package upstream adapts remote HTTP services to the gateway's handler
// capability. It forwards opaque payloads over HTTP and tracks response
// time with an exponentially weighted moving average.
package upstream
