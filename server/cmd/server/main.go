package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vitalsim/vitalsim/server/internal/alerts"
	"github.com/vitalsim/vitalsim/server/internal/api"
	"github.com/vitalsim/vitalsim/server/internal/config"
	"github.com/vitalsim/vitalsim/server/internal/metrics"
	"github.com/vitalsim/vitalsim/server/internal/sim"
	"github.com/vitalsim/vitalsim/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("vitalsim-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"stream_interval", cfg.Server.Stream.Interval,
		"alert_rules", len(cfg.Server.Alerts.Rules),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Single shared waveform generator, starts stopped.
	gen := sim.New()

	// Alerts engine — evaluates rules on every emitted point.
	alertEngine := alerts.New(cfg.Server.Alerts)

	m := metrics.New()

	apiHandler := api.New(gen, alertEngine, m)

	// WebSocket hub — streams points to UI clients at the configured rate.
	hub := ws.New(apiHandler.Emit, gen.Mode, cfg.Server.Stream.Interval)
	go hub.Run(ctx)

	// Hot-reload alert rules when the config file changes; port and stream
	// settings still require a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(c *config.Config) {
			alertEngine.UpdateRules(c.Server.Alerts)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	// Combined HTTP server: REST API + WebSocket hub + metrics on HTTPPort.
	httpMux := http.NewServeMux()
	httpMux.Handle("/", apiHandler)
	httpMux.Handle("/ws/stream", hub)
	httpMux.Handle("/metrics", m)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("vitalsim-server shutting down")
	httpSrv.Shutdown(context.Background()) //nolint:errcheck
}
