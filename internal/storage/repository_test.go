package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"findash/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "findash.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestGetOrCreateAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.GetOrCreateAccount(ctx, "Checking")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.Active {
		t.Fatal("new accounts must start active")
	}

	again, err := repo.GetOrCreateAccount(ctx, "Checking")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected same account, got ids %d and %d", first.ID, again.ID)
	}
}

func TestSetAccountActive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetOrCreateAccount(ctx, "Old Savings"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.SetAccountActive(ctx, "Old Savings", false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Active {
		t.Fatalf("expected one inactive account, got %+v", accounts)
	}

	if err := repo.SetAccountActive(ctx, "missing", false); err == nil {
		t.Fatal("expected error for unknown account")
	}
}

func TestReplaceTransactions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	candidates := []core.TransactionCandidate{
		{Account: "Checking", Date: "1/15/2025", Description: "Groceries run", Category: "Groceries", MoneyOut: 120},
		{Account: "Checking", Date: "1/20/2025", Category: "Rent", MoneyOut: 900},
		{Account: "Savings", Date: "2/1/2025", Category: "[Saving]", MoneyIn: 500, Balance: 1500},
	}

	n, err := repo.ReplaceTransactions(ctx, candidates)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if n != 3 {
		t.Fatalf("inserted = %d, want 3", n)
	}

	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected exactly the referenced accounts, got %+v", accounts)
	}

	dr := core.DateRange{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 12, 31)}
	txns, err := repo.Query(ctx, dr, Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txns))
	}
	if txns[0].Date.After(txns[1].Date) || txns[1].Date.After(txns[2].Date) {
		t.Fatal("query must be ordered by date ascending")
	}
}

func TestReplaceTransactionsIsFullRefresh(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.ReplaceTransactions(ctx, []core.TransactionCandidate{
		{Account: "Checking", Date: "1/1/2025", MoneyOut: 10},
		{Account: "Checking", Date: "1/2/2025", MoneyOut: 20},
	}); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	// Second import with a strict subset: prior rows must be gone.
	if _, err := repo.ReplaceTransactions(ctx, []core.TransactionCandidate{
		{Account: "Checking", Date: "1/3/2025", MoneyOut: 30},
	}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	n, err := repo.CountTransactions(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected full refresh to leave 1 row, got %d", n)
	}
}

func TestReplaceTransactionsRollsBackOnBadDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.ReplaceTransactions(ctx, []core.TransactionCandidate{
		{Account: "Checking", Date: "1/1/2025", MoneyOut: 10},
	}); err != nil {
		t.Fatalf("seed replace: %v", err)
	}

	_, err := repo.ReplaceTransactions(ctx, []core.TransactionCandidate{
		{Account: "Checking", Date: "1/2/2025", MoneyOut: 20},
		{Account: "Checking", Date: "not-a-date", MoneyOut: 30},
	})
	if !errors.Is(err, core.ErrBadDate) {
		t.Fatalf("expected ErrBadDate, got %v", err)
	}

	// Prior state must survive the failed import.
	n, err := repo.CountTransactions(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected rollback to preserve 1 row, got %d", n)
	}
	dr := core.DateRange{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}
	txns, err := repo.Query(ctx, dr, Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(txns) != 1 || txns[0].MoneyOut != 10 {
		t.Fatalf("expected the pre-import row, got %+v", txns)
	}
}

func TestQueryFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.ReplaceTransactions(ctx, []core.TransactionCandidate{
		{Account: "Checking", Date: "1/10/2025", Category: "Groceries", MoneyOut: 50},
		{Account: "Checking", Date: "1/11/2025", Category: "Rent", MoneyOut: 900},
		{Account: "Savings", Date: "1/12/2025", Category: "Groceries", MoneyOut: 25},
		{Account: "Checking", Date: "3/1/2025", Category: "Groceries", MoneyOut: 60},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	jan := core.DateRange{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}

	byCategory, err := repo.Query(ctx, jan, Filter{Category: "Groceries"})
	if err != nil {
		t.Fatalf("query category: %v", err)
	}
	if len(byCategory) != 2 {
		t.Fatalf("expected 2 grocery rows in January, got %d", len(byCategory))
	}

	byAccount, err := repo.Query(ctx, jan, Filter{Account: "Savings"})
	if err != nil {
		t.Fatalf("query account: %v", err)
	}
	if len(byAccount) != 1 || byAccount[0].Account != "Savings" {
		t.Fatalf("unexpected account filter result: %+v", byAccount)
	}

	// Inclusive bounds: a transaction exactly on End is returned.
	edge := core.DateRange{Start: core.NewDate(2025, 3, 1), End: core.NewDate(2025, 3, 1)}
	onEdge, err := repo.Query(ctx, edge, Filter{})
	if err != nil {
		t.Fatalf("query edge: %v", err)
	}
	if len(onEdge) != 1 {
		t.Fatalf("range bounds must be inclusive, got %d rows", len(onEdge))
	}
}
