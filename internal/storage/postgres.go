package storage

import (
	"context"
	"database/sql"
	"log/slog"

	"expensemcp/internal/core"
	"expensemcp/internal/ledger"

	_ "github.com/lib/pq"
)

var _ ledger.Store = (*PostgresRepository)(nil)

const insertExpensePostgres = `INSERT INTO expenses (category, amount, description) VALUES ($1, $2, $3) RETURNING id`

// PostgresRepository is the hosted alternative to SQLite. Rows survive
// restarts of the tool server.
type PostgresRepository struct {
	db  *sql.DB
	url string
}

// NewPostgresRepository connects to databaseURL and initializes the schema.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, unavailable("open postgres database", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable("ping database", err)
	}

	repo := &PostgresRepository{db: db, url: databaseURL}
	if err := repo.Initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// Initialize implements ledger.Store
func (r *PostgresRepository) Initialize(ctx context.Context) error {
	if err := RunPostgresMigrations(r.url); err != nil {
		return unavailable("initialize schema", err)
	}
	slog.DebugContext(ctx, "Postgres schema ready")
	return nil
}

// Append implements ledger.ExpenseAppender
func (r *PostgresRepository) Append(ctx context.Context, category string, amount float64, description string) (int64, error) {
	var id int64
	err := withConn(ctx, r.db, "insert expense", func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, insertExpensePostgres, category, amount, description).Scan(&id)
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Expense saved to Postgres",
		"id", id,
		"category", category,
		"amount", amount,
		"description", description)

	return id, nil
}

// ListAll implements ledger.ExpenseLister
func (r *PostgresRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
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

func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
