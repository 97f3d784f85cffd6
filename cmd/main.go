package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/angeloszaimis/api-gateway/config"
	"github.com/angeloszaimis/api-gateway/internal/gateway"
	"github.com/angeloszaimis/api-gateway/internal/httpserver"
	"github.com/angeloszaimis/api-gateway/internal/metrics"
	"github.com/angeloszaimis/api-gateway/internal/upstream"
	"github.com/angeloszaimis/api-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := metrics.NewCollector(1000, log)
	collector.Start(ctx)

	gw := buildGateway(cfg, log, collector)
	defer gw.Close()

	if err := registerUpstreams(gw, cfg, log); err != nil {
		log.Error("Failed to register upstream services", slog.Any("err", err))
		os.Exit(1)
	}

	mux := setupRouter(log, gw, collector)

	srv, err := httpserver.New(cfg.Server.Address, mux)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Gateway listening",
		slog.String("address", cfg.Server.Address),
		slog.Int("services", len(cfg.Services)))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting gateway", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func buildGateway(cfg *config.Config, log *slog.Logger, collector *metrics.Collector) *gateway.Gateway {
	handlerTimeout, failureWindow, cooldown := cfg.Durations()

	return gateway.New(log, collector, gateway.Options{
		FailureThreshold: cfg.BreakerThreshold(),
		FailureWindow:    failureWindow,
		Cooldown:         cooldown,
		HandlerTimeout:   handlerTimeout,
	})
}

func registerUpstreams(gw *gateway.Gateway, cfg *config.Config, log *slog.Logger) error {
	for _, svc := range cfg.Services {
		u, err := url.Parse(svc.URL)
		if err != nil {
			log.Error("Failed to parse upstream URL",
				slog.String("service", svc.Name),
				slog.String("url", svc.URL),
				slog.String("error", err.Error()))
			continue
		}

		if err := gw.RegisterService(svc.Name, upstream.New(svc.Name, u, nil)); err != nil {
			return err
		}

		log.Info("Registered upstream service",
			slog.String("service", svc.Name),
			slog.String("url", svc.URL))
	}

	return nil
}
