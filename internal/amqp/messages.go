package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"expensemcp/internal/core"
)

// ExpenseRecordedMessage announces a newly appended expense. It carries the
// full row so consumers never need to read the ledger back.
type ExpenseRecordedMessage struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseRecordedMessage creates a message for e stamped with the current time
func NewExpenseRecordedMessage(e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:          e.ID,
		Category:    e.Category,
		Amount:      e.Amount,
		Description: e.Description,
		Timestamp:   time.Now().UTC(),
	}
}

// Expense converts the message back to the domain type
func (m *ExpenseRecordedMessage) Expense() core.Expense {
	return core.Expense{
		ID:          m.ID,
		Category:    m.Category,
		Amount:      m.Amount,
		Description: m.Description,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes a message and rejects ones without an id.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, errors.New("expense recorded message without id")
	}
	return &msg, nil
}
