package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rxtx-hosting/playercount/internal/config"
	"github.com/rxtx-hosting/playercount/pkg/chart"
	"github.com/rxtx-hosting/playercount/pkg/exporter"
	"github.com/rxtx-hosting/playercount/pkg/store"
	"github.com/rxtx-hosting/playercount/pkg/tracker"
)

var (
	configPath = flag.String("config", "/etc/playercount/config.yaml", "Path to configuration file")
	addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	if *addr != "" {
		cfg.ServerAddr = *addr
	}

	location := time.Local
	if cfg.ChartTimezone != "" {
		location, err = time.LoadLocation(cfg.ChartTimezone)
		if err != nil {
			log.Fatalf("Failed to load chart timezone: %v", err)
		}
	}

	var st store.Store
	if cfg.StoreURL != "" {
		st, err = store.NewRedis(store.RedisOptions{
			URL:     cfg.StoreURL,
			Token:   cfg.StoreToken,
			Prefix:  cfg.StorePrefix,
			Timeout: cfg.StoreTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Redis store: %v", err)
		}
		slog.Info("Using Redis store", "prefix", cfg.StorePrefix)
	} else {
		st = store.NewMemory(store.NewState(cfg.SeriesCap))
		slog.Warn("No store URL configured, keeping series in memory", "cap", cfg.SeriesCap)
	}
	defer st.Close()

	if cfg.APIKey == "" {
		slog.Warn("No API key configured, ingest endpoint is open")
	}

	opts := []tracker.Option{}
	if cfg.PrometheusAddr != "" {
		promExporter := exporter.NewPrometheusExporter()
		opts = append(opts, tracker.WithRecorder(promExporter))
		go func() {
			slog.Info("Starting Prometheus server", "address", cfg.PrometheusAddr)
			if err := promExporter.StartServer(cfg.PrometheusAddr); err != nil {
				log.Fatalf("Failed to start Prometheus server: %v", err)
			}
		}()
	}

	tr := tracker.NewTracker(st, cfg.APIKey, opts...)
	apiServer := exporter.NewAPIServer(tr, chart.NewGoChart(), location)

	go func() {
		slog.Info("Starting API server", "address", cfg.ServerAddr)
		if err := apiServer.StartServer(cfg.ServerAddr); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("Received shutdown signal, cleaning up...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down API server", "error", err)
	}
}
