// Package main HTTP API 服务入口
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

	"github.com/joho/godotenv"

	"novel-studio-api/internal/config"
	einoobs "novel-studio-api/internal/observability/eino"
	"novel-studio-api/internal/wire"
	"novel-studio-api/pkg/logger"
	"novel-studio-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting api-server",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: Version,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		SampleRate:     cfg.Observability.Tracing.SampleRate,
		Insecure:       cfg.Observability.Tracing.Insecure,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 模型调用回调（指标/追踪）
	einoobs.Init()

	app, cleanup, err := wire.InitializeApp(ctx, cfg, Version)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize app", err)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.Router.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		log.Error("http server error", "error", err)
	}

	log.Info("shutting down server...")

	timeout := cfg.Server.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if err := app.Runner.Shutdown(shutdownCtx); err != nil {
		log.Warn("complete generation runs still active at exit", "error", err)
	}

	log.Info("server exited")
}
