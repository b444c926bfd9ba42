package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

// SMTPConfig addresses the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// sendFunc delivers a composed message; replaced in tests.
type sendFunc func(addr string, a smtp.Auth, e *email.Email) error

// EmailNotifier mails monthly reports over SMTP.
type EmailNotifier struct {
	cfg    SMTPConfig
	send   sendFunc
	logger *log.Logger
}

func NewEmailNotifier(cfg SMTPConfig, logger *log.Logger) *EmailNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &EmailNotifier{
		cfg:    cfg,
		send:   func(addr string, a smtp.Auth, e *email.Email) error { return e.Send(addr, a) },
		logger: logger.WithComponent(log.ComponentNotify),
	}
}

func (n *EmailNotifier) SendMonthlyReport(ctx context.Context, s core.MonthlySummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = n.cfg.From
	e.To = n.cfg.To
	e.Subject = Subject(s)
	e.Text = []byte(RenderText(s))

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := n.cfg.Host + ":" + strconv.Itoa(n.cfg.Port)
	if err := n.send(addr, auth, e); err != nil {
		n.logger.ErrorContext(ctx, "Failed to send monthly report",
			log.FieldOperation, log.OpNotify, "recipients", len(e.To), log.FieldError, err)
		return fmt.Errorf("send report email: %w", err)
	}

	n.logger.InfoContext(ctx, "Monthly report emailed",
		log.FieldYear, s.Year, log.FieldMonth, s.Month, "recipients", len(e.To))
	return nil
}

// LogNotifier writes the report to the log. Used when SMTP is not configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger.WithComponent(log.ComponentNotify)}
}

func (n *LogNotifier) SendMonthlyReport(ctx context.Context, s core.MonthlySummary) error {
	n.logger.InfoContext(ctx, Subject(s),
		log.FieldYear, s.Year,
		log.FieldMonth, s.Month,
		"total_expense", s.TotalExpense.String(),
		"transactions", s.TransactionCount,
		"report", RenderText(s))
	return nil
}
