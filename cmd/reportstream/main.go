// Package main implements the entry point for the reportstream collector,
// an HTTP endpoint that receives Reporting API and Network Error Logging
// uploads and forwards them to a configured sink.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360/reportstream/collector"
	"github.com/c360/reportstream/report"
	"github.com/c360/reportstream/reportregistry"
)

const (
	Version = "0.1.0"
	appName = "reportstream"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	})).With("app", appName, "version", Version)
	slog.SetDefault(logger)

	cfg, err := collector.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err := reportregistry.Register(report.DefaultRegistry()); err != nil {
		return fmt.Errorf("register report types: %w", err)
	}
	logger.Info("registered report types", "kinds", report.DefaultRegistry().Kinds())

	sink, cleanup, err := buildSink(cfg, logger)
	if err != nil {
		return fmt.Errorf("build sink: %w", err)
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coll, err := collector.New(cfg, sink, logger, registry)
	if err != nil {
		return fmt.Errorf("create collector: %w", err)
	}
	if err := coll.Start(ctx); err != nil {
		return fmt.Errorf("start collector: %w", err)
	}

	metricsServer := startMetricsServer(registry, logger)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx := context.Background()
	if metricsServer != nil {
		_ = metricsServer.Close()
	}
	if err := coll.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stop collector: %w", err)
	}
	return nil
}

// buildSink selects the sink from configuration: NATS when a URL is set,
// in-memory otherwise. The cleanup func closes any connection held.
func buildSink(cfg collector.Config, logger *slog.Logger) (collector.Sink, func(), error) {
	if cfg.NATSURL == "" {
		logger.Warn("no NATS URL configured, storing reports in memory only")
		return collector.NewMemorySink(), func() {}, nil
	}

	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name(appName),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS at %s: %w", cfg.NATSURL, err)
	}

	sink, err := collector.NewNATSSink(nc, cfg.NATSSubjectPrefix)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("publishing reports to NATS", "url", cfg.NATSURL, "prefix", cfg.NATSSubjectPrefix)
	return sink, nc.Close, nil
}

// startMetricsServer exposes Prometheus metrics on the address in
// REPORTSTREAM_METRICS_ADDR. Disabled when the variable is empty.
func startMetricsServer(registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	addr := os.Getenv("REPORTSTREAM_METRICS_ADDR")
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Info("metrics server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return server
}

func logLevel() slog.Level {
	switch os.Getenv("REPORTSTREAM_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
