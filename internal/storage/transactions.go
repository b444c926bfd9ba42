package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"
)

const transactionColumns = `t.id, t.user_id, t.type, t.amount_cents, t.category_id, t.merchant,
	t.payment_mode, t.note, t.date, t.created_at`

// CreateTransaction stores tx and returns it with ID and CreatedAt filled in.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.CreatedAt = r.now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, type, amount_cents, category_id, merchant, payment_mode, note, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, string(tx.Type), tx.Amount.Cents, tx.CategoryID, tx.Merchant,
		string(tx.PaymentMode), tx.Note, tx.Date.String(), tx.CreatedAt.Unix())
	if err != nil {
		return core.Transaction{}, core.NewStorageError("create transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, core.NewStorageError("create transaction", err)
	}
	tx.ID = id

	r.logger.InfoContext(ctx, "Transaction saved to SQLite",
		log.FieldTransactionID, tx.ID,
		"type", tx.Type,
		log.FieldAmountCents, tx.Amount.Cents,
		log.FieldCategoryID, tx.CategoryID,
		"date", tx.Date.String())

	return tx, nil
}

// GetTransaction returns core.ErrNotFound when no row has the given id.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, core.NewStorageError("get transaction", err)
	}
	return tx, nil
}

// DeleteTransaction removes a transaction. Transactions are household-shared, so any user may delete.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return core.NewStorageError("delete transaction", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.NewStorageError("delete transaction", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Transaction deleted from SQLite", log.FieldTransactionID, id)
	return nil
}

// QueryTransactions lists matching transactions, newest date first.
func (r *SQLiteRepository) QueryTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	w := transactionWhere(f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions t`+w.String()+` ORDER BY t.date DESC, t.id DESC`,
		w.args...)
	if err != nil {
		return nil, core.NewStorageError("query transactions", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, core.NewStorageError("scan transaction", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("query transactions", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		txType    string
		mode      string
		date      string
		createdAt int64
	)
	if err := s.Scan(&tx.ID, &tx.UserID, &txType, &tx.Amount.Cents, &tx.CategoryID, &tx.Merchant,
		&mode, &tx.Note, &date, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := parseStoredDate(date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(txType)
	tx.PaymentMode = core.PaymentMode(mode)
	tx.Date = d
	tx.CreatedAt = time.Unix(createdAt, 0).UTC()
	return tx, nil
}
