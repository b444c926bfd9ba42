package storage

import (
	"context"

	"kharcha/internal/core"
)

// SumTransactions totals the amounts of matching transactions.
func (r *SQLiteRepository) SumTransactions(ctx context.Context, f core.TransactionFilter) (core.Aggregate, error) {
	w := transactionWhere(f)
	var agg core.Aggregate
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(t.amount_cents), 0), COUNT(*) FROM transactions t`+w.String(), w.args...).
		Scan(&agg.Total.Cents, &agg.Count)
	if err != nil {
		return core.Aggregate{}, core.NewStorageError("sum transactions", err)
	}
	return agg, nil
}

// CategoryTotals groups matching transactions by category, largest total first.
// Rows whose category no longer exists are kept with empty name and group.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, f core.TransactionFilter) ([]core.CategoryTotal, error) {
	w := transactionWhere(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.category_id,
		       COALESCE(c.name, ''), COALESCE(c.icon, ''), COALESCE(c.color, ''), COALESCE(c.category_group, ''),
		       SUM(t.amount_cents), COUNT(*)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id`+w.String()+`
		GROUP BY t.category_id
		ORDER BY SUM(t.amount_cents) DESC, t.category_id ASC`, w.args...)
	if err != nil {
		return nil, core.NewStorageError("category totals", err)
	}
	defer rows.Close()

	out := []core.CategoryTotal{}
	for rows.Next() {
		var (
			ct    core.CategoryTotal
			group string
		)
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Icon, &ct.Color, &group, &ct.Total.Cents, &ct.Count); err != nil {
			return nil, core.NewStorageError("scan category total", err)
		}
		ct.Group = core.CategoryGroup(group)
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("category totals", err)
	}
	return out, nil
}

// DailyTotals returns one row per date that has matching transactions, oldest first.
func (r *SQLiteRepository) DailyTotals(ctx context.Context, f core.TransactionFilter) ([]core.DailyTotal, error) {
	w := transactionWhere(f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.date, SUM(t.amount_cents) FROM transactions t`+w.String()+` GROUP BY t.date ORDER BY t.date ASC`,
		w.args...)
	if err != nil {
		return nil, core.NewStorageError("daily totals", err)
	}
	defer rows.Close()

	out := []core.DailyTotal{}
	for rows.Next() {
		var (
			dt   core.DailyTotal
			date string
		)
		if err := rows.Scan(&date, &dt.Total.Cents); err != nil {
			return nil, core.NewStorageError("scan daily total", err)
		}
		if dt.Date, err = parseStoredDate(date); err != nil {
			return nil, core.NewStorageError("scan daily total", err)
		}
		out = append(out, dt)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("daily totals", err)
	}
	return out, nil
}

// MonthsWithTransactions lists distinct (year, month) pairs with matching rows, most recent first.
// Labels are left empty for the caller to render.
func (r *SQLiteRepository) MonthsWithTransactions(ctx context.Context, f core.TransactionFilter, limit int) ([]core.MonthRef, error) {
	w := transactionWhere(f)
	args := append(w.args, limit)
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%Y', t.date) AS INTEGER) AS y, CAST(strftime('%m', t.date) AS INTEGER) AS m
		FROM transactions t`+w.String()+`
		GROUP BY y, m
		ORDER BY y DESC, m DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, core.NewStorageError("months with transactions", err)
	}
	defer rows.Close()

	out := []core.MonthRef{}
	for rows.Next() {
		var m core.MonthRef
		if err := rows.Scan(&m.Year, &m.Month); err != nil {
			return nil, core.NewStorageError("scan month", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("months with transactions", err)
	}
	return out, nil
}

// PaymentModeTotals groups matching transactions by payment mode, largest total first.
func (r *SQLiteRepository) PaymentModeTotals(ctx context.Context, f core.TransactionFilter) ([]core.PaymentModeTotal, error) {
	w := transactionWhere(f)
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.payment_mode, SUM(t.amount_cents), COUNT(*)
		FROM transactions t`+w.String()+`
		GROUP BY t.payment_mode
		ORDER BY SUM(t.amount_cents) DESC, t.payment_mode ASC`, w.args...)
	if err != nil {
		return nil, core.NewStorageError("payment mode totals", err)
	}
	defer rows.Close()

	out := []core.PaymentModeTotal{}
	for rows.Next() {
		var (
			pm   core.PaymentModeTotal
			mode string
		)
		if err := rows.Scan(&mode, &pm.Total.Cents, &pm.Count); err != nil {
			return nil, core.NewStorageError("scan payment mode total", err)
		}
		pm.PaymentMode = core.PaymentMode(mode)
		out = append(out, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("payment mode totals", err)
	}
	return out, nil
}
