package sheets

import (
	"context"

	"expensemcp/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseWriter mirrors a recorded expense somewhere outside the ledger.
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}
)
