package memory

import (
	"context"
	"sync"

	"expensemcp/internal/core"
	"expensemcp/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

// Store keeps expenses in process memory. Contents are lost when the process exits.
type Store struct {
	mu     sync.Mutex
	lastID int64
	items  []core.Expense
}

func New() *Store {
	return &Store{}
}

// Initialize is a no-op: the slice is the table.
func (s *Store) Initialize(_ context.Context) error {
	return nil
}

// Append stores the expense under the next id.
func (s *Store) Append(_ context.Context, category string, amount float64, description string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	s.items = append(s.items, core.Expense{
		ID:          s.lastID,
		Category:    category,
		Amount:      amount,
		Description: description,
	})
	return s.lastID, nil
}

// ListAll returns a copy of every stored expense in insertion order.
func (s *Store) ListAll(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) Close() error {
	return nil
}
