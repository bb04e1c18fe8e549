package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"gastos/internal/backend"
	"gastos/internal/cache"
	"gastos/internal/cli"
	"gastos/internal/config"
	apphttp "gastos/internal/http"
	"gastos/internal/log"
	"gastos/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	svc := services.New(result.Store, services.Options{
		Events:        result.Publisher(),
		SessionSecret: []byte(cfg.SessionSecret),
		SessionTTL:    cfg.SessionTTL,
		DashboardTTL:  cfg.DashboardCacheTTL,
	})

	caches := cache.NewManager()
	if c := svc.Dashboard.Cache(); c != nil {
		caches.Register(c)
	}
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Services:               svc,
		Store:                  result.Store,
		Logger:                 logger,
		RateLimitPerMinute:     cfg.RateLimitPerMinute,
		LoginAttemptsPerMinute: cfg.LoginAttemptsPerMinute,
		AuthRequired:           cfg.AuthRequired,
		TrustedProxies:         cfg.TrustedProxies,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	go svc.Auth.RunCleanup(ctx, 15*time.Minute)

	logger.Info("Starting gastos server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"auth_required", cfg.AuthRequired,
		"events_enabled", result.Events != nil,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
