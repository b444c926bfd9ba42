package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"kharcha/internal/amqp"
	"kharcha/internal/cli"
	"kharcha/internal/log"
	"kharcha/internal/notify"
	"kharcha/internal/report"
	"kharcha/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting kharcha-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var notifier worker.Notifier = notify.NewLogNotifier(logger)
	if cfg.EmailEnabled() {
		notifier = notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.ReportFrom,
			To:       cfg.ReportTo,
		}, logger)
	} else {
		logger.Info("SMTP disabled - monthly reports go to the log")
	}

	aggregator := report.New(repo, report.Options{
		Locale:          cfg.ReportLocale,
		ATMCategoryName: cfg.ATMCategoryName,
		BillingCycleDay: cfg.BillingCycleDay,
		Logger:          logger,
	})
	job := worker.NewMonthlyReportJob(aggregator, notifier, worker.ReportJobOptions{
		Schedule: cfg.ReportSchedule,
		Logger:   logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return job.Run(gctx) })

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		activity := worker.NewActivityWorker(repo, client, logger)
		g.Go(func() error { return activity.Run(gctx) })
	} else {
		logger.Info("Skipping activity consumer - no AMQP_URL provided")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", log.FieldError, err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker shutdown complete")
}
