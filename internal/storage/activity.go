package storage

import (
	"context"
	"time"

	"kharcha/internal/core"
)

// Activity is one audit entry derived from a transaction event.
type Activity struct {
	ID            int64                `json:"id"`
	Event         string               `json:"event"`
	TransactionID int64                `json:"transactionId"`
	UserID        int64                `json:"userId"`
	Type          core.TransactionType `json:"type"`
	Amount        core.Money           `json:"amount"`
	Date          core.Date            `json:"date"`
	OccurredAt    time.Time            `json:"occurredAt"`
	RecordedAt    time.Time            `json:"recordedAt"`
}

// RecordActivity appends an audit entry. An entry for the same event and transaction
// is recorded once; repeats return duplicate=true and leave the log unchanged.
func (r *SQLiteRepository) RecordActivity(ctx context.Context, a Activity) (entry Activity, duplicate bool, err error) {
	a.RecordedAt = r.now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO activity_log (event, transaction_id, user_id, type, amount_cents, date, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Event, a.TransactionID, a.UserID, string(a.Type), a.Amount.Cents, a.Date.String(),
		a.OccurredAt.UTC().Unix(), a.RecordedAt.Unix())
	if err != nil {
		return Activity{}, false, core.NewStorageError("record activity", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Activity{}, false, core.NewStorageError("record activity", err)
	}
	if n == 0 {
		return a, true, nil
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return Activity{}, false, core.NewStorageError("record activity", err)
	}
	return a, false, nil
}

// ListActivity returns the most recent entries first.
func (r *SQLiteRepository) ListActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event, transaction_id, user_id, type, amount_cents, date, occurred_at, recorded_at
		FROM activity_log ORDER BY occurred_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, core.NewStorageError("list activity", err)
	}
	defer rows.Close()

	out := []Activity{}
	for rows.Next() {
		var (
			a                      Activity
			txType, date           string
			occurredAt, recordedAt int64
		)
		if err := rows.Scan(&a.ID, &a.Event, &a.TransactionID, &a.UserID, &txType, &a.Amount.Cents,
			&date, &occurredAt, &recordedAt); err != nil {
			return nil, core.NewStorageError("scan activity", err)
		}
		if a.Date, err = parseStoredDate(date); err != nil {
			return nil, core.NewStorageError("scan activity", err)
		}
		a.Type = core.TransactionType(txType)
		a.OccurredAt = time.Unix(occurredAt, 0).UTC()
		a.RecordedAt = time.Unix(recordedAt, 0).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("list activity", err)
	}
	return out, nil
}
