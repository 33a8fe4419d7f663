package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"foodwaste/internal/backend"
	"foodwaste/internal/cli"
	apphttp "foodwaste/internal/http"
	"foodwaste/internal/log"
	"foodwaste/internal/metrics"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(nil, log.ComponentApp, nil)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, log.ComponentApp, nil)

	m := metrics.New()
	b, err := backend.NewFactory(logger, m).CreateBackend(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("Backend close error", log.FieldError, err)
		}
	}()

	var origins []string
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}
	srv := apphttp.NewServer(":"+cfg.Port, b.Service, apphttp.Options{
		Logger:             logger,
		Metrics:            m,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AllowedOrigins:     origins,
		ChatMode:           cfg.ChatMode,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting foodwaste server", "port", cfg.Port, "backend", cfg.DataBackend, log.FieldChatMode, cfg.ChatMode)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		cancel()
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
