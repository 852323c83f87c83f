// Command findata-mcp serves the financial data tools over stdio, SSE or
// a plain HTTP JSON API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"findata-mcp/config"
	"findata-mcp/internal/api"
	"findata-mcp/internal/app"
	"findata-mcp/internal/mcpserver"
	"findata-mcp/observability"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	transport := flag.String("transport", cfg.Server.Transport, "stdio, sse or http")
	host := flag.String("host", cfg.Server.Host, "listen host for sse and http")
	port := flag.Int("port", cfg.Server.Port, "listen port for sse and http")
	flag.Parse()
	cfg.Server.Transport, cfg.Server.Host, cfg.Server.Port = *transport, *host, *port
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLoggerWithLevel(cfg.Log.Production, observability.ParseLevel(cfg.Log.Level))
	observability.InitMetrics()
	if envErr != nil {
		observability.Debug("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		observability.Fatal("server error", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Shutdown(shutdownCtx)
		observability.Info("findata-mcp stopped")
	}()

	switch cfg.Server.Transport {
	case config.TransportHTTP:
		return serveHTTP(ctx, cfg, api.NewRouter(api.NewHandler(a), cfg))
	case config.TransportSSE:
		stopMetrics := serveMetrics(cfg.Server.MetricsAddr)
		defer stopMetrics()
		return serveSSE(ctx, cfg, a)
	default:
		stopMetrics := serveMetrics(cfg.Server.MetricsAddr)
		defer stopMetrics()
		s, err := mcpserver.New(a)
		if err != nil {
			return err
		}
		return mcpserver.ServeStdio(ctx, s, os.Stdin, os.Stdout)
	}
}

func serveHTTP(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		observability.Info("starting HTTP server", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	observability.Info("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func serveSSE(ctx context.Context, cfg *config.Config, a *app.App) error {
	s, err := mcpserver.New(a)
	if err != nil {
		return err
	}

	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://" + cfg.Addr()
	}
	sse := mcpserver.NewSSE(s, baseURL)

	errCh := make(chan error, 1)
	go func() {
		observability.Info("starting SSE server", "addr", cfg.Addr(), "base_url", baseURL)
		errCh <- sse.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	observability.Info("shutting down SSE server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return sse.Shutdown(shutdownCtx)
}

// serveMetrics exposes /metrics on its own listener for transports that
// have no HTTP router. It is a no-op when addr is empty.
func serveMetrics(addr string) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		observability.Info("starting metrics server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Error("metrics server error", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
