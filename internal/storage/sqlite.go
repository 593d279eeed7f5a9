package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"expensemcp/internal/core"
	"expensemcp/internal/ledger"

	_ "modernc.org/sqlite"
)

var _ ledger.Store = (*SQLiteRepository)(nil)

const insertExpenseSQLite = `INSERT INTO expenses (category, amount, description) VALUES (?, ?, ?)`

type SQLiteRepository struct {
	db  *sql.DB
	dsn string
}

// SQLiteDSN builds a modernc DSN for path. Writers wait on a locked
// database instead of failing immediately.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)"
}

// NewSQLiteRepository opens the database at dbPath and initializes the schema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, unavailable("create db directory", err)
	}

	dsn := SQLiteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("open sqlite database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, unavailable("ping database", err)
	}

	repo := &SQLiteRepository{db: db, dsn: dsn}
	if err := repo.Initialize(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// Initialize implements ledger.Store
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	if err := RunSQLiteMigrations(r.dsn); err != nil {
		return unavailable("initialize schema", err)
	}
	slog.DebugContext(ctx, "SQLite schema ready", "dsn", r.dsn)
	return nil
}

// Append implements ledger.ExpenseAppender
func (r *SQLiteRepository) Append(ctx context.Context, category string, amount float64, description string) (int64, error) {
	var id int64
	err := withConn(ctx, r.db, "insert expense", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, insertExpenseSQLite, category, amount, description)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"category", category,
		"amount", amount,
		"description", description)

	return id, nil
}

// ListAll implements ledger.ExpenseLister
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	var expenses []core.Expense
	err := withConn(ctx, r.db, "list expenses", func(conn *sql.Conn) error {
		var err error
		expenses, err = listExpenses(ctx, conn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
