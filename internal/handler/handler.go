package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angeloszaimis/api-gateway/internal/gateway"
	"github.com/angeloszaimis/api-gateway/internal/service"
)

// Reported for caller-cancelled requests; nginx's convention.
const statusClientClosedRequest = 499

// GatewayHandler exposes the gateway over HTTP. The first path segment
// under the prefix names the target service and the request body is the
// opaque payload.
type GatewayHandler struct {
	logger  *slog.Logger
	gateway *gateway.Gateway
	prefix  string
}

func NewGatewayHandler(logger *slog.Logger, gw *gateway.Gateway, prefix string) *GatewayHandler {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &GatewayHandler{
		logger:  logger,
		gateway: gw,
		prefix:  prefix,
	}
}

func (h *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	clientIP := extractClientIP(r)
	serviceName := strings.Trim(strings.TrimPrefix(r.URL.Path, h.prefix), "/")

	h.logger.Info("Received request",
		slog.String("request_id", requestID),
		slog.String("from", clientIP),
		slog.String("method", r.Method),
		slog.String("service", serviceName),
		slog.String("user_agent", r.UserAgent()))

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	start := time.Now()
	resp, err := h.gateway.Handle(r.Context(), serviceName, payload)
	if err != nil {
		h.writeError(w, requestID, serviceName, err)
		return
	}

	w.Header().Set("X-Request-Id", requestID)

	switch body := resp.(type) {
	case []byte:
		w.Write(body)
	case string:
		io.WriteString(w, body)
	default:
		// Opaque payloads of any other shape go out as JSON.
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.logger.Warn("Failed to encode response",
				slog.String("request_id", requestID),
				slog.String("service", serviceName),
				slog.Any("err", err))
		}
	}

	h.logger.Info("Request completed",
		slog.String("request_id", requestID),
		slog.String("service", serviceName),
		slog.Duration("duration", time.Since(start)))
}

func (h *GatewayHandler) writeError(w http.ResponseWriter, requestID, serviceName string, err error) {
	status := statusFor(err)

	var oerr *service.CircuitOpenError
	if errors.As(err, &oerr) && oerr.RetryAfter > 0 {
		seconds := int(oerr.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	h.logger.Warn("Request failed",
		slog.String("request_id", requestID),
		slog.String("service", serviceName),
		slog.Int("status", status),
		slog.Any("err", err))

	w.Header().Set("X-Request-Id", requestID)
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	var (
		verr *service.ValidationError
		nerr *service.NotFoundError
		oerr *service.CircuitOpenError
		terr *service.TimeoutError
		herr *service.HandlerError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &nerr):
		return http.StatusNotFound
	case errors.As(err, &oerr):
		return http.StatusServiceUnavailable
	case errors.As(err, &terr):
		return http.StatusGatewayTimeout
	case errors.As(err, &herr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}
