package ledger

import (
	"context"

	"expensemcp/internal/core"
)

// Ports implemented by every ledger backend.
type (
	ExpenseAppender interface {
		// Append records a new expense and returns the id the store assigned to it.
		Append(ctx context.Context, category string, amount float64, description string) (id int64, err error)
	}

	// ExpenseLister returns every stored expense in ascending id order.
	ExpenseLister interface {
		ListAll(ctx context.Context) ([]core.Expense, error)
	}

	// Store is the full lifecycle of a backend: Initialize before use, Close when done.
	Store interface {
		ExpenseAppender
		ExpenseLister
		// Initialize makes sure the expenses table exists. Calling it again is a no-op.
		Initialize(ctx context.Context) error
		Close() error
	}
)
