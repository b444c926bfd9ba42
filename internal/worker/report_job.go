package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

// DefaultReportSchedule fires at 08:00 on the first of every month.
const DefaultReportSchedule = "0 8 1 * *"

// MonthlySummarizer computes a month's summary; nil year and month select the previous month.
type MonthlySummarizer interface {
	ComputeMonthlySummary(ctx context.Context, year, month *int) (core.MonthlySummary, error)
}

// Notifier delivers a finished monthly report.
type Notifier interface {
	SendMonthlyReport(ctx context.Context, summary core.MonthlySummary) error
}

// MonthlyReportJob sends last month's summary on a cron schedule.
type MonthlyReportJob struct {
	summarizer MonthlySummarizer
	notifier   Notifier
	schedule   string
	location   *time.Location
	timeout    time.Duration
	logger     *log.Logger
}

type ReportJobOptions struct {
	Schedule string
	Location *time.Location
	// Timeout bounds a single run
	Timeout time.Duration
	Logger  *log.Logger
}

func NewMonthlyReportJob(summarizer MonthlySummarizer, notifier Notifier, opts ReportJobOptions) *MonthlyReportJob {
	if opts.Schedule == "" {
		opts.Schedule = DefaultReportSchedule
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &MonthlyReportJob{
		summarizer: summarizer,
		notifier:   notifier,
		schedule:   opts.Schedule,
		location:   opts.Location,
		timeout:    opts.Timeout,
		logger:     opts.Logger.WithComponent(log.ComponentScheduler),
	}
}

// RunOnce computes and sends the previous month's report.
func (j *MonthlyReportJob) RunOnce(ctx context.Context) error {
	start := time.Now()
	summary, err := j.summarizer.ComputeMonthlySummary(ctx, nil, nil)
	if err != nil {
		return fmt.Errorf("compute monthly summary: %w", err)
	}
	if err := j.notifier.SendMonthlyReport(ctx, summary); err != nil {
		return fmt.Errorf("send monthly report: %w", err)
	}
	j.logger.InfoContext(ctx, "Monthly report sent",
		log.FieldYear, summary.Year,
		log.FieldMonth, summary.Month,
		"total_expense_cents", summary.TotalExpense.Cents,
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Run schedules the job and blocks until ctx is cancelled, then waits for a
// running report to finish.
func (j *MonthlyReportJob) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLocation(j.location),
		cron.WithLogger(cronLogger{j.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{j.logger})),
	)
	if _, err := c.AddFunc(j.schedule, func() { j.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", j.schedule, err)
	}

	c.Start()
	j.logger.InfoContext(ctx, "Monthly report scheduled", "schedule", j.schedule, "next_run", c.Entries()[0].Next)

	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("Monthly report scheduler stopped")
	return nil
}

func (j *MonthlyReportJob) runScheduled(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), j.timeout)
	defer cancel()
	if err := j.RunOnce(ctx); err != nil {
		j.logger.ErrorContext(ctx, "Monthly report failed", log.FieldError, err)
	}
}

// cronLogger adapts log.Logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, log.FieldError, err)...)
}
