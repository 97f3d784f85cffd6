// Package handler implements the HTTP entry point for the gateway. It
// maps URL paths to service names, forwards request bodies as opaque
// payloads, and translates the gateway's typed errors to status codes.
package handler
