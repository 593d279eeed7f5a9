package worker

import (
	"context"
	"errors"
	"fmt"

	"expensemcp/internal/amqp"
	"expensemcp/internal/log"
	"expensemcp/internal/sheets"
)

// MirrorWorker copies recorded expenses to an external sheet
type MirrorWorker struct {
	sheets sheets.ExpenseWriter
	logger *log.Logger
}

func NewMirrorWorker(writer sheets.ExpenseWriter, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &MirrorWorker{
		sheets: writer,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecorded processes a single expense recorded message from AMQP.
// A returned error makes the consumer requeue the message.
func (w *MirrorWorker) HandleRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	if msg == nil {
		return errors.New("nil expense recorded message")
	}

	w.logger.InfoContext(ctx, "Processing expense recorded message",
		"id", msg.ID,
		"timestamp", msg.Timestamp)

	expense := msg.Expense()
	ref, err := w.sheets.Append(ctx, expense)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror expense",
			log.NewFields().
				WithOperation(log.OpMirror).
				WithExpense(expense.ID, expense.Category, expense.Amount, expense.Description).
				WithError(err).
				ToSlice()...)
		return fmt.Errorf("mirror expense %d: %w", msg.ID, err)
	}

	w.logger.InfoContext(ctx, "Successfully mirrored expense",
		"id", msg.ID,
		"row_ref", ref)
	return nil
}
