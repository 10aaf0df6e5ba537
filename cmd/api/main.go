package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/archscope/internal/application"
	appinspection "github.com/bryanwahyu/archscope/internal/application/inspection"
	"github.com/bryanwahyu/archscope/internal/application/session"
	"github.com/bryanwahyu/archscope/internal/config"
	"github.com/bryanwahyu/archscope/internal/infra/ai/provider"
	"github.com/bryanwahyu/archscope/internal/infra/httpserver"
	"github.com/bryanwahyu/archscope/internal/logger"
	"github.com/bryanwahyu/archscope/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Env)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := provider.New(ctx, cfg)
	if err != nil {
		log.Error("ai provider init failed", "provider", cfg.AI.Provider, "error", err)
		os.Exit(1)
	}

	svc := appinspection.NewService(client, application.SystemClock{}, cfg.AI.Timeout, log)
	sessions := session.NewRegistry(cfg.Session.TTL)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		Sessions:    sessions,
		Metrics:     middleware.NewMetrics(),
		RateLimiter: limiter,
		Logger:      log,
		Checkers: map[string]middleware.HealthChecker{
			"ai": middleware.ProviderHealthChecker{Provider: cfg.AI.Provider, Configured: cfg.AI.APIKey != ""},
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		HistoryDisplay: cfg.Session.HistoryDisplay,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", addr, "provider", cfg.AI.Provider, "model", cfg.AI.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
