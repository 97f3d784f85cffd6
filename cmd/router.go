package main

import (
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/api-gateway/internal/gateway"
	"github.com/angeloszaimis/api-gateway/internal/handler"
	"github.com/angeloszaimis/api-gateway/internal/metrics"
)

func setupRouter(log *slog.Logger, gw *gateway.Gateway, collector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	gatewayHandler := handler.NewGatewayHandler(log, gw, "/api")
	adminHandler := handler.NewAdminHandler(log, gw)

	mux.Handle("/api/", gatewayHandler)
	mux.Handle("/admin/services", adminHandler)
	mux.Handle("/admin/services/", adminHandler)
	mux.HandleFunc("/metrics", collector.Handler(gw.BreakerStats))

	return mux
}
