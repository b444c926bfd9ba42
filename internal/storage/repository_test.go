package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "kharcha.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func mustCategory(t *testing.T, repo *SQLiteRepository, name string) core.Category {
	t.Helper()
	c, err := repo.FindCategoryByName(context.Background(), name)
	require.NoError(t, err)
	return c
}

func addTx(t *testing.T, repo *SQLiteRepository, typ core.TransactionType, cents int64, catID int64, mode core.PaymentMode, date string) core.Transaction {
	t.Helper()
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	tx, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID: 1, Type: typ, Amount: core.Money{Cents: cents}, CategoryID: catID, PaymentMode: mode, Date: d,
	})
	require.NoError(t, err)
	return tx
}

func TestMigrationsSeedDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cats, err := repo.QueryCategories(ctx, core.CategoryFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, cats)

	atm := mustCategory(t, repo, "atm withdrawal")
	assert.Equal(t, core.CategoryIncome, atm.Type)
	assert.True(t, atm.IsDefault)
	assert.Nil(t, atm.OwnerUserID)

	office, err := repo.QueryCategories(ctx, core.CategoryFilter{Group: core.GroupOffice})
	require.NoError(t, err)
	for _, c := range office {
		assert.Equal(t, core.GroupOffice, c.Group)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kharcha.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	require.NoError(t, RunMigrations(DSN(path)))
	version, dirty, err := SchemaVersion(DSN(path))
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	groceries := mustCategory(t, repo, "Groceries")

	tx := addTx(t, repo, core.Expense, 1250, groceries.ID, core.UPI, "2025-01-03")
	assert.NotZero(t, tx.ID)
	assert.False(t, tx.CreatedAt.IsZero())

	got, err := repo.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.Amount, got.Amount)
	assert.Equal(t, "2025-01-03", got.Date.String())
	assert.Equal(t, core.UPI, got.PaymentMode)

	require.NoError(t, repo.DeleteTransaction(ctx, tx.ID))
	_, err = repo.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, tx.ID), core.ErrNotFound)
}

func TestQueryTransactionsFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	groceries := mustCategory(t, repo, "Groceries")
	salary := mustCategory(t, repo, "Salary")

	addTx(t, repo, core.Expense, 100, groceries.ID, core.Cash, "2025-01-03")
	addTx(t, repo, core.Expense, 200, groceries.ID, core.CreditCard, "2025-01-31")
	addTx(t, repo, core.Expense, 300, groceries.ID, core.Cash, "2025-02-01")
	addTx(t, repo, core.Income, 5000, salary.ID, core.BankTransfer, "2025-01-15")

	jan := core.MonthRange(2025, 1)
	all, err := repo.QueryTransactions(ctx, core.TransactionFilter{Range: &jan})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "2025-01-31", all[0].Date.String(), "newest first")

	cash, err := repo.QueryTransactions(ctx, core.TransactionFilter{PaymentMode: core.Cash})
	require.NoError(t, err)
	assert.Len(t, cash, 2)

	income, err := repo.QueryTransactions(ctx, core.TransactionFilter{Type: core.Income, CategoryID: salary.ID})
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, int64(5000), income[0].Amount.Cents)
}

func TestAggregates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	groceries := mustCategory(t, repo, "Groceries")
	software := mustCategory(t, repo, "Software")

	addTx(t, repo, core.Expense, 100, groceries.ID, core.Cash, "2025-01-03")
	addTx(t, repo, core.Expense, 150, groceries.ID, core.Cash, "2025-01-03")
	addTx(t, repo, core.Expense, 500, software.ID, core.CreditCard, "2025-01-10")
	addTx(t, repo, core.Expense, 70, 9999, core.UPI, "2025-01-11") // orphaned category
	addTx(t, repo, core.Expense, 40, groceries.ID, core.Cash, "2024-11-20")

	jan := core.MonthRange(2025, 1)
	f := core.TransactionFilter{Range: &jan, Type: core.Expense}

	sum, err := repo.SumTransactions(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(820), sum.Total.Cents)
	assert.Equal(t, int64(4), sum.Count)

	cats, err := repo.CategoryTotals(ctx, f)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, software.ID, cats[0].CategoryID)
	assert.Equal(t, core.GroupOffice, cats[0].Group)
	assert.Equal(t, int64(250), cats[1].Total.Cents)
	assert.Equal(t, int64(2), cats[1].Count)
	assert.Equal(t, int64(9999), cats[2].CategoryID)
	assert.Empty(t, cats[2].Name)
	assert.Empty(t, cats[2].Group)

	daily, err := repo.DailyTotals(ctx, f)
	require.NoError(t, err)
	require.Len(t, daily, 3)
	assert.Equal(t, "2025-01-03", daily[0].Date.String())
	assert.Equal(t, int64(250), daily[0].Total.Cents)

	months, err := repo.MonthsWithTransactions(ctx, core.TransactionFilter{Type: core.Expense}, 12)
	require.NoError(t, err)
	assert.Equal(t, []core.MonthRef{{Year: 2025, Month: 1}, {Year: 2024, Month: 11}}, months)

	modes, err := repo.PaymentModeTotals(ctx, core.TransactionFilter{Type: core.Expense})
	require.NoError(t, err)
	require.Len(t, modes, 3)
	assert.Equal(t, core.CreditCard, modes[0].PaymentMode)
	assert.Equal(t, core.Cash, modes[1].PaymentMode)
	assert.Equal(t, int64(290), modes[1].Total.Cents)
}

func TestEmptyAggregates(t *testing.T) {
	repo := newTestRepo(t)
	sum, err := repo.SumTransactions(context.Background(), core.TransactionFilter{Type: core.Expense})
	require.NoError(t, err)
	assert.Zero(t, sum.Total.Cents)
	assert.Zero(t, sum.Count)

	cats, err := repo.CategoryTotals(context.Background(), core.TransactionFilter{})
	require.NoError(t, err)
	assert.NotNil(t, cats)
	assert.Empty(t, cats)
}

func TestCreateCategoryRejectsDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := int64(1)

	c, err := repo.CreateCategory(ctx, core.Category{
		Name: "Pet Care", Type: core.CategoryExpense, Group: core.GroupHome, Icon: "🐶", OwnerUserID: &owner,
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	got, err := repo.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OwnerUserID)
	assert.Equal(t, owner, *got.OwnerUserID)

	_, err = repo.CreateCategory(ctx, core.Category{
		Name: "Pet Care", Type: core.CategoryExpense, Group: core.GroupHome, OwnerUserID: &owner,
	})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, core.User{Username: " Asha ", DisplayName: "Asha", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "asha", u.Username)

	got, err := repo.GetUserByUsername(ctx, "ASHA")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetUser(ctx, 42)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.CreateUser(ctx, core.User{Username: "asha", PasswordHash: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestActivityLog(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entry := Activity{
		Event: "transaction.created", TransactionID: 7, UserID: 1, Type: core.Expense,
		Amount: core.Money{Cents: 999}, Date: core.NewDate(2025, 1, 3),
	}
	_, dup, err := repo.RecordActivity(ctx, entry)
	require.NoError(t, err)
	assert.False(t, dup)

	_, dup, err = repo.RecordActivity(ctx, entry)
	require.NoError(t, err)
	assert.True(t, dup, "redelivered event is recorded once")

	entries, err := repo.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(7), entries[0].TransactionID)
	assert.Equal(t, "2025-01-03", entries[0].Date.String())
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Close())
	_, err := repo.SumTransactions(context.Background(), core.TransactionFilter{})
	assert.ErrorIs(t, err, core.ErrStorage)
}

func TestRepositoryLogsUnderStorageComponent(t *testing.T) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = &buf
	repo := newTestRepo(t).WithLogger(log.New(cfg))

	tx := addTx(t, repo, core.Expense, 500, mustCategory(t, repo, "Groceries").ID, core.Cash, "2025-01-05")
	require.NoError(t, repo.DeleteTransaction(context.Background(), tx.ID))

	out := buf.String()
	assert.Contains(t, out, `msg="Transaction saved to SQLite" component=storage`)
	assert.Contains(t, out, `msg="Transaction deleted from SQLite" component=storage`)
	assert.Contains(t, out, "amount_cents=500")
}
