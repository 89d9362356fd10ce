// Package storage is the durable transaction store backed by SQLite.
//
// Dates are stored as ISO text (2006-01-02) so range filters and the
// query ordering stay purely lexicographic.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"findash/internal/core"

	_ "modernc.org/sqlite"
)

const isoDate = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetOrCreateAccount resolves an account by name, creating it on first
// reference. New accounts start active.
func (r *SQLiteRepository) GetOrCreateAccount(ctx context.Context, name string) (core.Account, error) {
	return getOrCreateAccount(ctx, r.db, name)
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getOrCreateAccount(ctx context.Context, q execQuerier, name string) (core.Account, error) {
	if _, err := q.ExecContext(ctx,
		"INSERT INTO accounts (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name); err != nil {
		return core.Account{}, fmt.Errorf("insert account %q: %w", name, err)
	}
	var acct core.Account
	var active int64
	err := q.QueryRowContext(ctx,
		"SELECT id, name, is_active FROM accounts WHERE name = ?", name).
		Scan(&acct.ID, &acct.Name, &active)
	if err != nil {
		return core.Account{}, fmt.Errorf("select account %q: %w", name, err)
	}
	acct.Active = active != 0
	return acct, nil
}

// SetAccountActive flips the active flag. Accounts are never deleted.
func (r *SQLiteRepository) SetAccountActive(ctx context.Context, name string, active bool) error {
	flag := 0
	if active {
		flag = 1
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET is_active = ? WHERE name = ?", flag, name)
	if err != nil {
		return fmt.Errorf("update account %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %q not found", name)
	}
	return nil
}

// ListAccounts returns all accounts ordered by name.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, is_active FROM accounts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var acct core.Account
		var active int64
		if err := rows.Scan(&acct.ID, &acct.Name, &active); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		acct.Active = active != 0
		out = append(out, acct)
	}
	return out, rows.Err()
}

// ReplaceTransactions implements the full-refresh import: it deletes
// every existing transaction and reinserts the candidates, resolving
// accounts by name on the way, all inside one scoped transaction. Any
// row failure (including a malformed date) rolls back, leaving the
// prior contents intact. Returns the number of rows inserted.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, candidates []core.TransactionCandidate) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transactions"); err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}

	accountIDs := make(map[string]int64)
	inserted := 0
	for i, c := range candidates {
		id, ok := accountIDs[c.Account]
		if !ok {
			acct, err := getOrCreateAccount(ctx, tx, c.Account)
			if err != nil {
				return 0, err
			}
			id = acct.ID
			accountIDs[c.Account] = id
		}

		date, err := time.Parse(core.DateLayout, c.Date)
		if err != nil {
			return 0, fmt.Errorf("row %d (%s): %w: %q", i+1, c.Account, core.ErrBadDate, c.Date)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO transactions (account_id, date, description, category, money_in, money_out, account_balance)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, date.Format(isoDate), c.Description, c.Category, c.MoneyIn, c.MoneyOut, c.Balance)
		if err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Transaction store replaced",
		"inserted", inserted,
		"accounts", len(accountIDs))
	return inserted, nil
}

// Filter narrows a Query beyond the date range. Zero values mean no
// filtering on that dimension.
type Filter struct {
	Category string
	Account  string
}

// Query returns the transactions within the inclusive date range,
// optionally filtered, ordered by date ascending then id ascending.
// The id tie-break makes the iteration order deterministic for equal
// dates.
func (r *SQLiteRepository) Query(ctx context.Context, dr core.DateRange, f Filter) ([]core.Transaction, error) {
	q := `SELECT t.id, COALESCE(a.name, ''), COALESCE(a.is_active, 0), t.date,
	             t.description, t.category, t.money_in, t.money_out, t.account_balance
	      FROM transactions t
	      LEFT JOIN accounts a ON a.id = t.account_id
	      WHERE t.date >= ? AND t.date <= ?`
	args := []any{dr.Start.Format(isoDate), dr.End.Format(isoDate)}
	if f.Category != "" {
		q += " AND t.category = ?"
		args = append(args, f.Category)
	}
	if f.Account != "" {
		q += " AND a.name = ?"
		args = append(args, f.Account)
	}
	q += " ORDER BY t.date ASC, t.id ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var active int64
		var date string
		if err := rows.Scan(&t.ID, &t.Account, &active, &date,
			&t.Description, &t.Category, &t.MoneyIn, &t.MoneyOut, &t.Balance); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.AccountActive = active != 0
		t.Date, err = time.Parse(isoDate, date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountTransactions returns the total number of stored transactions.
func (r *SQLiteRepository) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
