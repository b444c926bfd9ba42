// Package report computes the read-only financial summaries shown on the dashboard:
// a range summary, a calendar-month summary and the household payment position.
package report

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

const (
	// DefaultATMCategoryName is the income category whose total counts as cash withdrawn.
	DefaultATMCategoryName = "ATM Withdrawal"
	// UncategorizedName labels transactions whose category no longer exists.
	UncategorizedName = "Uncategorized"

	availableMonthsLimit = 12
)

// Store is the aggregation surface the Aggregator reads from.
type Store interface {
	SumTransactions(ctx context.Context, f core.TransactionFilter) (core.Aggregate, error)
	CategoryTotals(ctx context.Context, f core.TransactionFilter) ([]core.CategoryTotal, error)
	DailyTotals(ctx context.Context, f core.TransactionFilter) ([]core.DailyTotal, error)
	MonthsWithTransactions(ctx context.Context, f core.TransactionFilter, limit int) ([]core.MonthRef, error)
	PaymentModeTotals(ctx context.Context, f core.TransactionFilter) ([]core.PaymentModeTotal, error)
	FindCategoryByName(ctx context.Context, name string) (core.Category, error)
}

// Options configures an Aggregator. Zero values select the defaults.
type Options struct {
	Locale          string
	ATMCategoryName string
	BillingCycleDay int
	Location        *time.Location
	Now             func() time.Time
	Logger          *log.Logger
}

// Aggregator derives summaries from stored transactions. It holds no state between calls.
type Aggregator struct {
	store       Store
	months      monthNames
	atmCategory string
	cycleDay    int
	location    *time.Location
	now         func() time.Time
	logger      *log.Logger
}

func New(store Store, opts Options) *Aggregator {
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	if strings.TrimSpace(opts.ATMCategoryName) == "" {
		opts.ATMCategoryName = DefaultATMCategoryName
	}
	if opts.BillingCycleDay < 1 || opts.BillingCycleDay > 28 {
		opts.BillingCycleDay = core.DefaultBillingCycleDay
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Aggregator{
		store:       store,
		months:      newMonthNames(opts.Locale),
		atmCategory: opts.ATMCategoryName,
		cycleDay:    opts.BillingCycleDay,
		location:    opts.Location,
		now:         opts.Now,
		logger:      opts.Logger.WithComponent(log.ComponentReport),
	}
}

// Today is the current calendar date in the aggregator's location.
func (a *Aggregator) Today() core.Date {
	return core.DateOf(a.now().In(a.location))
}

// ComputeSummary totals income and expense over an inclusive range. A nil start defaults to the
// first of the current month and a nil end to today.
func (a *Aggregator) ComputeSummary(ctx context.Context, start, end *core.Date) (core.Summary, error) {
	rng := core.MonthToDate(a.Today())
	if start != nil {
		rng.Start = *start
	}
	if end != nil {
		rng.End = *end
	}
	if err := rng.Validate(); err != nil {
		return core.Summary{}, err
	}

	expenseFilter := core.TransactionFilter{Range: &rng, Type: core.Expense}
	incomeFilter := core.TransactionFilter{Range: &rng, Type: core.Income}

	expense, err := a.store.SumTransactions(ctx, expenseFilter)
	if err != nil {
		return core.Summary{}, storeErr("sum expense", err)
	}
	income, err := a.store.SumTransactions(ctx, incomeFilter)
	if err != nil {
		return core.Summary{}, storeErr("sum income", err)
	}
	categories, err := a.store.CategoryTotals(ctx, expenseFilter)
	if err != nil {
		return core.Summary{}, storeErr("expense by category", err)
	}
	incomeCategories, err := a.store.CategoryTotals(ctx, incomeFilter)
	if err != nil {
		return core.Summary{}, storeErr("income by category", err)
	}
	daily, err := a.store.DailyTotals(ctx, expenseFilter)
	if err != nil {
		return core.Summary{}, storeErr("daily spending", err)
	}

	categories = a.labelOrphans(ctx, categories)
	incomeCategories = a.labelOrphans(ctx, incomeCategories)

	summary := core.Summary{
		StartDate:         rng.Start,
		EndDate:           rng.End,
		TotalIncome:       income.Total,
		TotalExpense:      expense.Total,
		Balance:           income.Total.Sub(expense.Total),
		TransactionCount:  expense.Count,
		CategoryBreakdown: categories,
		IncomeBreakdown:   incomeCategories,
		GroupBreakdown:    groupBreakdown(categories),
		DailySpending:     daily,
	}
	a.logger.DebugContext(ctx, "Summary computed",
		log.FieldStartDate, rng.Start.String(), log.FieldEndDate, rng.End.String(),
		"total_expense_cents", expense.Total.Cents, "total_income_cents", income.Total.Cents)
	return summary, nil
}

// ComputeMonthlySummary reports expenses for one calendar month. With both year and month nil it
// reports the previous month; supplying only one of them is an error.
func (a *Aggregator) ComputeMonthlySummary(ctx context.Context, year, month *int) (core.MonthlySummary, error) {
	y, m, err := a.resolveMonth(year, month)
	if err != nil {
		return core.MonthlySummary{}, err
	}

	rng := core.MonthRange(y, m)
	filter := core.TransactionFilter{Range: &rng, Type: core.Expense}

	total, err := a.store.SumTransactions(ctx, filter)
	if err != nil {
		return core.MonthlySummary{}, storeErr("sum month", err)
	}
	categories, err := a.store.CategoryTotals(ctx, filter)
	if err != nil {
		return core.MonthlySummary{}, storeErr("month by category", err)
	}
	daily, err := a.store.DailyTotals(ctx, filter)
	if err != nil {
		return core.MonthlySummary{}, storeErr("month daily spending", err)
	}
	available, err := a.store.MonthsWithTransactions(ctx, core.TransactionFilter{Type: core.Expense}, availableMonthsLimit)
	if err != nil {
		return core.MonthlySummary{}, storeErr("available months", err)
	}
	for i := range available {
		available[i].Label = a.months.Label(available[i].Year, available[i].Month)
	}

	categories = a.labelOrphans(ctx, categories)
	summary := core.MonthlySummary{
		Year:              y,
		Month:             m,
		MonthName:         a.months.Label(y, m),
		StartDate:         rng.Start,
		EndDate:           rng.End,
		TotalExpense:      total.Total,
		TransactionCount:  total.Count,
		CategoryBreakdown: categories,
		GroupBreakdown:    groupBreakdown(categories),
		DailySpending:     daily,
		AvailableMonths:   available,
	}
	a.logger.DebugContext(ctx, "Monthly summary computed",
		log.FieldYear, y, log.FieldMonth, m, "total_expense_cents", total.Total.Cents)
	return summary, nil
}

func (a *Aggregator) resolveMonth(year, month *int) (int, int, error) {
	switch {
	case year == nil && month == nil:
		y, m := core.PreviousMonth(a.now().In(a.location))
		return y, m, nil
	case year == nil || month == nil:
		return 0, 0, core.InvalidArgument("year and month must be given together")
	}
	if *month < 1 || *month > 12 {
		return 0, 0, core.InvalidArgument("month %d out of range 1-12", *month)
	}
	if *year < 1 || *year > 9999 {
		return 0, 0, core.InvalidArgument("year %d out of range", *year)
	}
	return *year, *month, nil
}

// ComputePaymentSummary reports all-time cash on hand, the credit card spend of the current
// billing cycle and all-time expense per payment mode.
func (a *Aggregator) ComputePaymentSummary(ctx context.Context) (core.PaymentSummary, error) {
	withdrawn, err := a.cashWithdrawn(ctx)
	if err != nil {
		return core.PaymentSummary{}, err
	}
	spent, err := a.store.SumTransactions(ctx, core.TransactionFilter{Type: core.Expense, PaymentMode: core.Cash})
	if err != nil {
		return core.PaymentSummary{}, storeErr("sum cash spent", err)
	}

	cycle := core.CurrentBillingCycle(a.Today(), a.cycleDay)
	card, err := a.store.SumTransactions(ctx, core.TransactionFilter{
		Range:       &cycle.DateRange,
		Type:        core.Expense,
		PaymentMode: core.CreditCard,
	})
	if err != nil {
		return core.PaymentSummary{}, storeErr("sum credit card", err)
	}
	byMode, err := a.store.PaymentModeTotals(ctx, core.TransactionFilter{Type: core.Expense})
	if err != nil {
		return core.PaymentSummary{}, storeErr("expense by payment mode", err)
	}

	onHand := withdrawn.Sub(spent.Total)
	if onHand.Cents < 0 {
		onHand = core.Money{}
	}
	return core.PaymentSummary{
		CashOnHand:        onHand,
		CashWithdrawn:     withdrawn,
		CashSpent:         spent.Total,
		CreditCardDue:     card.Total,
		CreditCardCount:   card.Count,
		BillingCycleStart: cycle.Start,
		BillingCycleEnd:   cycle.End,
		NextDueDate:       cycle.DueDate,
		ByPaymentMode:     byMode,
	}, nil
}

func (a *Aggregator) cashWithdrawn(ctx context.Context) (core.Money, error) {
	atm, err := a.store.FindCategoryByName(ctx, a.atmCategory)
	if errors.Is(err, core.ErrNotFound) {
		a.logger.WarnContext(ctx, "ATM category not found, treating withdrawals as zero", "category", a.atmCategory)
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, storeErr("find atm category", err)
	}
	agg, err := a.store.SumTransactions(ctx, core.TransactionFilter{Type: core.Income, CategoryID: atm.ID})
	if err != nil {
		return core.Money{}, storeErr("sum cash withdrawn", err)
	}
	return agg.Total, nil
}

// labelOrphans renames rows whose category was deleted so they still count toward the totals.
func (a *Aggregator) labelOrphans(ctx context.Context, rows []core.CategoryTotal) []core.CategoryTotal {
	for i := range rows {
		if rows[i].Name != "" || rows[i].Group != "" {
			continue
		}
		a.logger.WarnContext(ctx, "Transactions reference a missing category",
			log.FieldCategoryID, rows[i].CategoryID, "count", rows[i].Count)
		rows[i].Name = UncategorizedName
		rows[i].Group = core.GroupUnassigned
	}
	return rows
}

// groupBreakdown folds category rows into per-group totals, largest first and ties by name.
func groupBreakdown(rows []core.CategoryTotal) []core.GroupTotal {
	index := map[core.CategoryGroup]int{}
	out := []core.GroupTotal{}
	for _, r := range rows {
		i, ok := index[r.Group]
		if !ok {
			i = len(out)
			index[r.Group] = i
			out = append(out, core.GroupTotal{Group: r.Group})
		}
		out[i].Total = out[i].Total.Add(r.Total)
		out[i].Count += r.Count
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Group < out[j].Group
	})
	return out
}

func storeErr(op string, err error) error {
	if errors.Is(err, core.ErrStorage) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return core.NewStorageError(op, err)
}
