package services

import (
	"context"
	"errors"
	"fmt"

	"expensemcp/internal/core"
	"expensemcp/internal/ledger"
	"expensemcp/internal/log"
)

// EventPublisher announces recorded expenses to downstream consumers.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, e core.Expense) error
	Close() error
}

// ExpenseService implements the two tool operations on top of a ledger store
type ExpenseService struct {
	store     ledger.Store
	publisher EventPublisher
	logger    *log.Logger
	events    *log.StructuredLogger
}

// NewExpenseService wires a store and an optional publisher. A nil logger uses slog's default.
func NewExpenseService(store ledger.Store, publisher EventPublisher, logger *log.Logger) *ExpenseService {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	logger = logger.WithComponent(log.ComponentExpense)
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

// AddExpense records an expense and returns the confirmation text.
// Publishing is best effort: the expense is already stored when it runs.
func (s *ExpenseService) AddExpense(ctx context.Context, category string, amount float64, description string) (string, error) {
	id, err := s.store.Append(ctx, category, amount, description)
	if err != nil {
		s.events.LogError(ctx, "Failed to record expense", err, log.ComponentStorage, log.OpAppend,
			log.NewFields().WithExpense(0, category, amount, description))
		return "", fmt.Errorf("add expense: %w", err)
	}
	s.events.LogExpenseRecorded(ctx, id, category, amount, description)

	if err := s.publishRecorded(ctx, core.Expense{
		ID:          id,
		Category:    category,
		Amount:      amount,
		Description: description,
	}); err != nil {
		s.events.LogError(ctx, "Failed to publish expense recorded message", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithExpense(id, category, amount, description))
	}

	return core.FormatAdded(category, amount, description), nil
}

// ListExpenses renders every stored expense as a report.
func (s *ExpenseService) ListExpenses(ctx context.Context) (string, error) {
	expenses, err := s.store.ListAll(ctx)
	if err != nil {
		s.events.LogError(ctx, "Failed to list expenses", err, log.ComponentStorage, log.OpList, nil)
		return "", fmt.Errorf("list expenses: %w", err)
	}
	s.logger.DebugContext(ctx, "Listed expenses", "count", len(expenses))
	return core.FormatReport(expenses), nil
}

func (s *ExpenseService) publishRecorded(ctx context.Context, e core.Expense) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishExpenseRecorded(ctx, e)
}

// Close closes both storage and publisher connections
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close expense service: %w", err)
	}

	return nil
}
