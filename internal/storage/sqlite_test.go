package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"expensemcp/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestSQLiteListAllEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	expenses, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if expenses == nil || len(expenses) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", expenses)
	}
	if got := core.FormatReport(expenses); got != core.EmptyReport {
		t.Fatalf("unexpected report: %q", got)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Append(ctx, "Food", 12.5, "Lunch")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	expenses, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	want := core.Expense{ID: id, Category: "Food", Amount: 12.5, Description: "Lunch"}
	if len(expenses) != 1 || expenses[0] != want {
		t.Fatalf("got %+v, want [%+v]", expenses, want)
	}
}

func TestSQLiteAppendPreservesOrderAndIncreasingIDs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	inputs := []core.Expense{
		{Category: "Travel", Amount: 200, Description: "Flight"},
		{Category: "Food", Amount: 12.5, Description: "Lunch"},
		{Category: "Refund", Amount: -30, Description: "Returned item"},
		{Category: "", Amount: 0, Description: ""},
	}
	var ids []int64
	for _, in := range inputs {
		id, err := repo.Append(ctx, in.Category, in.Amount, in.Description)
		if err != nil {
			t.Fatalf("Append(%+v): %v", in, err)
		}
		ids = append(ids, id)
	}

	expenses, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(expenses) != len(inputs) {
		t.Fatalf("expected %d expenses, got %d", len(inputs), len(expenses))
	}
	for i, e := range expenses {
		if e.ID != ids[i] {
			t.Errorf("expense %d: id %d, want %d", i, e.ID, ids[i])
		}
		if i > 0 && e.ID <= expenses[i-1].ID {
			t.Errorf("ids not strictly increasing at %d", i)
		}
		if e.Category != inputs[i].Category || e.Amount != inputs[i].Amount || e.Description != inputs[i].Description {
			t.Errorf("expense %d: got %+v, want %+v", i, e, inputs[i])
		}
	}
}

func TestSQLiteScenarioReport(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Append(ctx, "Travel", 200, "Flight"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := repo.Append(ctx, "Food", 12.5, "Lunch"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	expenses, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}

	want := "Expense Report:\n1. Travel - $200: Flight\n2. Food - $12.5: Lunch\n"
	if got := core.FormatReport(expenses); got != want {
		t.Fatalf("report = %q, want %q", got, want)
	}
}

func TestSQLiteInitializeIsIdempotent(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Append(ctx, "Food", 1, "Snack"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if err := repo.Initialize(ctx); err != nil {
		t.Fatalf("third Initialize: %v", err)
	}

	// Reopening runs Initialize again on an existing file.
	reopened, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	expenses, err := reopened.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Description != "Snack" {
		t.Fatalf("rows changed by Initialize: %+v", expenses)
	}
}

func TestSQLiteConcurrentAppends(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Append(ctx, "C", 1, "d"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Append: %v", err)
	}

	expenses, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(expenses) != n {
		t.Fatalf("expected %d rows, got %d", n, len(expenses))
	}
	seen := map[int64]bool{}
	for _, e := range expenses {
		if seen[e.ID] {
			t.Fatalf("duplicate id %d", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestSQLiteClosedStoreIsUnavailable(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := repo.Append(ctx, "Food", 1, "x"); !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatalf("Append after Close: expected ErrStorageUnavailable, got %v", err)
	}
	if _, err := repo.ListAll(ctx); !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatalf("ListAll after Close: expected ErrStorageUnavailable, got %v", err)
	}
}

func TestNewSQLiteRepositoryUnopenablePathIsUnavailable(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(parent, []byte("not a directory"), 0o600); err != nil {
		t.Fatal(err)
	}

	repo, err := NewSQLiteRepository(filepath.Join(parent, "expenses.db"))
	if err == nil {
		repo.Close()
		t.Fatal("expected error when the parent path is a regular file")
	}
	if !errors.Is(err, core.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	got := SQLiteDSN("data/expenses.db")
	want := "file:data/expenses.db?_pragma=busy_timeout(5000)"
	if got != want {
		t.Fatalf("SQLiteDSN = %q, want %q", got, want)
	}
}
