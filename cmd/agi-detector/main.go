package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bencium/agi-detector/api"
	"github.com/bencium/agi-detector/cache"
	"github.com/bencium/agi-detector/config"
	"github.com/bencium/agi-detector/engine"
	"github.com/bencium/agi-detector/pool"
	"github.com/bencium/agi-detector/ratelimit"
	"github.com/bencium/agi-detector/retry"
	"github.com/bencium/agi-detector/scraper"
)

func main() {
	// ── 1. Configuration and logging ────────────────────────────────
	cfg := config.Load()
	initLogger(cfg.Log)
	slog.Info("agi-detector starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	// ── 2. Shared pools and browser subsystem ───────────────────────
	// The browser process is launched lazily on first browser-strategy use.
	agents := pool.New(cfg.Strategy.UserAgents)
	proxies := pool.New(cfg.Strategy.Proxies)
	sc := scraper.New(cfg.Browser, agents, proxies)

	// ── 3. Strategy cascade, cheapest first ─────────────────────────
	strategies := []engine.Strategy{
		engine.NewFeedStrategy(cfg.Strategy.HTTPTimeout, agents),
		engine.NewAPIProbeStrategy(cfg.Strategy.HTTPTimeout, agents, proxies),
		engine.NewFetchStrategy(cfg.Strategy.HTTPTimeout, agents, proxies),
		engine.NewBrowserStrategy(sc.AcquirePage),
	}

	eng := engine.New(
		strategies,
		cache.New(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		ratelimit.New(ratelimit.Budget{
			Requests:    cfg.RateLimit.Requests,
			PerInterval: cfg.RateLimit.PerInterval,
		}),
		retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			Kind:        retry.Backoff(cfg.Retry.Backoff),
		},
		sc.Close,
	)
	defer eng.Shutdown()

	// ── 4. HTTP server ──────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(eng, sc, cfg, startTime)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 5. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// eng.Shutdown() runs via defer — releases the browser process.
	slog.Info("agi-detector stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
