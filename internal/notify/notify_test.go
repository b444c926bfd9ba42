package notify

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

func december() core.MonthlySummary {
	return core.MonthlySummary{
		Year:             2024,
		Month:            12,
		MonthName:        "December 2024",
		StartDate:        core.NewDate(2024, 12, 1),
		EndDate:          core.NewDate(2024, 12, 31),
		TotalExpense:     core.Money{Cents: 15050},
		TransactionCount: 3,
		CategoryBreakdown: []core.CategoryTotal{
			{Name: "Groceries", Group: core.GroupHome, Total: core.Money{Cents: 10050}, Count: 2},
			{Name: "Software", Group: core.GroupOffice, Total: core.Money{Cents: 5000}, Count: 1},
		},
		GroupBreakdown: []core.GroupTotal{
			{Group: core.GroupHome, Total: core.Money{Cents: 10050}, Count: 2},
			{Group: core.GroupOffice, Total: core.Money{Cents: 5000}, Count: 1},
		},
	}
}

func TestRenderText(t *testing.T) {
	out := RenderText(december())
	assert.Contains(t, out, "Expenses for December 2024 (2024-12-01 to 2024-12-31)")
	assert.Contains(t, out, "Total spent: 150.50 across 3 transactions")
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "100.50")
	assert.Less(t, strings.Index(out, "By group"), strings.Index(out, "By category"))

	empty := RenderText(core.MonthlySummary{MonthName: "March 2025"})
	assert.Contains(t, empty, "No expenses were recorded this month.")
}

func TestEmailNotifier(t *testing.T) {
	n := NewEmailNotifier(SMTPConfig{
		Host: "smtp.example.com", Port: 2525, Username: "reports", Password: "secret",
		From: "reports@example.com", To: []string{"asha@example.com"},
	}, nil)

	var (
		gotAddr string
		gotAuth smtp.Auth
		gotMail *email.Email
	)
	n.send = func(addr string, a smtp.Auth, e *email.Email) error {
		gotAddr, gotAuth, gotMail = addr, a, e
		return nil
	}

	require.NoError(t, n.SendMonthlyReport(context.Background(), december()))
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "Kharcha report for December 2024", gotMail.Subject)
	assert.Equal(t, []string{"asha@example.com"}, gotMail.To)
	assert.Contains(t, string(gotMail.Text), "Software")
}

func TestEmailNotifierWithoutCredentials(t *testing.T) {
	n := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 25, From: "a@example.com", To: []string{"b@example.com"}}, nil)
	n.send = func(_ string, a smtp.Auth, _ *email.Email) error {
		assert.Nil(t, a)
		return nil
	}
	require.NoError(t, n.SendMonthlyReport(context.Background(), december()))
}

func TestEmailNotifierFailures(t *testing.T) {
	n := NewEmailNotifier(SMTPConfig{Host: "localhost", Port: 25}, nil)
	n.send = func(string, smtp.Auth, *email.Email) error { return errors.New("connection refused") }
	assert.ErrorContains(t, n.SendMonthlyReport(context.Background(), december()), "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.SendMonthlyReport(ctx, december()), context.Canceled)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = &buf
	n := NewLogNotifier(log.New(cfg))

	require.NoError(t, n.SendMonthlyReport(context.Background(), december()))
	out := buf.String()
	assert.Contains(t, out, "Kharcha report for December 2024")
	assert.Contains(t, out, "component=notify")
	assert.Contains(t, out, "total_expense=150.50")
}
