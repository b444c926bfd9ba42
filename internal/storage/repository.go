package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the household's transaction, category and user store.
type SQLiteRepository struct {
	db     *sql.DB
	now    func() time.Time
	logger *log.Logger
}

// DSN appends the connection pragmas the app relies on to a database file path.
func DSN(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath
	}
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		now:    time.Now,
		logger: log.Default().WithComponent(log.ComponentStorage),
	}, nil
}

// WithLogger routes repository log lines through logger under the storage component.
func (r *SQLiteRepository) WithLogger(logger *log.Logger) *SQLiteRepository {
	if logger != nil {
		r.logger = logger.WithComponent(log.ComponentStorage)
	}
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return core.NewStorageError("ping", r.db.PingContext(ctx))
}

// whereClause accumulates AND-ed SQL conditions and their positional arguments.
type whereClause struct {
	conds []string
	args  []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// transactionWhere translates a filter into conditions on the transactions table aliased as t.
func transactionWhere(f core.TransactionFilter) *whereClause {
	w := &whereClause{}
	if f.Range != nil {
		w.add("t.date BETWEEN ? AND ?", f.Range.Start.String(), f.Range.End.String())
	}
	if f.Type != "" {
		w.add("t.type = ?", string(f.Type))
	}
	if f.PaymentMode != "" {
		w.add("t.payment_mode = ?", string(f.PaymentMode))
	}
	if f.CategoryID != 0 {
		w.add("t.category_id = ?", f.CategoryID)
	}
	return w
}

func parseStoredDate(s string) (core.Date, error) {
	t, err := time.Parse(core.DateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("stored date %q: %w", s, err)
	}
	return core.Date{Time: t}, nil
}
