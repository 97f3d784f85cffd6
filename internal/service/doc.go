// Package service defines the capability contract for backend services
// routed through the gateway, together with the typed errors the gateway
// returns. Every error carries the service name so callers can tell
// "service missing" from "service unhealthy" from "service call failed".
package service
