package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/angeloszaimis/api-gateway/internal/circuitbreaker"
	"github.com/angeloszaimis/api-gateway/internal/gateway"
	"github.com/angeloszaimis/api-gateway/internal/upstream"
)

// AdminHandler lets an administrative caller manage the service registry
// at runtime: PUT registers an upstream by URL, DELETE unregisters, GET
// lists services with their breaker state.
type AdminHandler struct {
	logger  *slog.Logger
	gateway *gateway.Gateway
}

func NewAdminHandler(logger *slog.Logger, gw *gateway.Gateway) *AdminHandler {
	return &AdminHandler{
		logger:  logger,
		gateway: gw,
	}
}

type registerRequest struct {
	URL string `json:"url"`
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/services"), "/")

	switch {
	case r.Method == http.MethodGet && name == "":
		h.list(w)
	case r.Method == http.MethodPut && name != "":
		h.register(w, r, name)
	case r.Method == http.MethodDelete && name != "":
		h.unregister(w, name)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AdminHandler) list(w http.ResponseWriter) {
	resp := struct {
		Services []string                            `json:"services"`
		Breakers map[string]circuitbreaker.Snapshot `json:"breakers"`
	}{
		Services: h.gateway.Services(),
		Breakers: h.gateway.BreakerStats(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *AdminHandler) register(w http.ResponseWriter, r *http.Request, name string) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		http.Error(w, "url must be a valid http or https URL", http.StatusBadRequest)
		return
	}

	if err := h.gateway.RegisterService(name, upstream.New(name, u, nil)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("admin registered service",
		slog.String("service", name),
		slog.String("url", req.URL))
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) unregister(w http.ResponseWriter, name string) {
	h.gateway.UnregisterService(name)
	h.logger.Info("admin unregistered service", slog.String("service", name))
	w.WriteHeader(http.StatusNoContent)
}
