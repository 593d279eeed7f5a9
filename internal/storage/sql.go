package storage

import (
	"context"
	"database/sql"
	"fmt"

	"expensemcp/internal/core"
)

const listExpensesQuery = `SELECT id, category, amount, description FROM expenses ORDER BY id`

// unavailable tags a driver error as core.ErrStorageUnavailable and keeps it in the chain.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorageUnavailable, err)
}

// withConn runs fn on a connection held only for the duration of the call.
func withConn(ctx context.Context, db *sql.DB, op string, fn func(conn *sql.Conn) error) error {
	if db == nil {
		return unavailable(op, sql.ErrConnDone)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return unavailable(op, err)
	}
	defer conn.Close()

	if err := fn(conn); err != nil {
		return unavailable(op, err)
	}
	return nil
}

func listExpenses(ctx context.Context, conn *sql.Conn) ([]core.Expense, error) {
	rows, err := conn.QueryContext(ctx, listExpensesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		var (
			e           core.Expense
			category    sql.NullString
			amount      sql.NullFloat64
			description sql.NullString
		)
		if err := rows.Scan(&e.ID, &category, &amount, &description); err != nil {
			return nil, err
		}
		e.Category = category.String
		e.Amount = amount.Float64
		e.Description = description.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}
