package core

import (
	"errors"
)

type (
	// Expense is one recorded transaction. ID is assigned by the store on insert.
	Expense struct {
		ID          int64
		Category    string
		Amount      float64
		Description string
	}
)

// ErrStorageUnavailable is returned by every ledger store when the backing
// storage cannot be opened, written or read. Stores wrap the driver error
// alongside it, so callers should test with errors.Is.
var ErrStorageUnavailable = errors.New("storage unavailable")
