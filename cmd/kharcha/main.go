package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/auth"
	"kharcha/internal/cache"
	"kharcha/internal/cli"
	apphttp "kharcha/internal/http"
	"kharcha/internal/log"
	"kharcha/internal/report"
	"kharcha/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Events are optional; without a broker the activity log is simply not fed.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("Failed to initialize token issuer", log.FieldError, err)
		os.Exit(1)
	}

	categories := services.NewCategoryService(repo, cfg.CategoryCacheTTL, logger)
	caches := cache.NewManager(logger)
	caches.Register(categories.Cache())
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Aggregator: report.New(repo, report.Options{
			Locale:          cfg.ReportLocale,
			ATMCategoryName: cfg.ATMCategoryName,
			BillingCycleDay: cfg.BillingCycleDay,
			Logger:          logger,
		}),
		Transactions: services.NewTransactionService(repo, publisher, logger),
		Categories:   categories,
		Auth:         auth.NewAuthenticator(repo, tokens, logger),
		Activity:     repo,
		DB:           repo,
	}, apphttp.Options{
		CookieSecure:            cfg.CookieSecure,
		RateLimitPerMinute:      cfg.RateLimitPerMinute,
		LoginRateLimitPerMinute: cfg.LoginRateLimitPerMinute,
		Logger:                  logger,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
	})

	logger.Info("Starting kharcha server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
