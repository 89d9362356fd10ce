// Package services orchestrates the import pipeline: fetch rows from
// the configured sheet, normalize them, and atomically replace the
// transaction store contents.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"findash/internal/core"
	"findash/internal/sheets"
)

// TransactionReplacer is the store side of the import pipeline. The
// replace must be atomic: on any row failure the prior contents
// survive.
type TransactionReplacer interface {
	ReplaceTransactions(ctx context.Context, candidates []core.TransactionCandidate) (int, error)
}

// ImportService runs the full-refresh import. Every successful run
// destroys the prior transaction history and rebuilds it from the
// sheet; callers must treat an import as irreversible.
type ImportService struct {
	source        sheets.RowSource
	store         TransactionReplacer
	spreadsheetID string
	sheetName     string
}

func NewImportService(source sheets.RowSource, store TransactionReplacer, spreadsheetID, sheetName string) *ImportService {
	return &ImportService{
		source:        source,
		store:         store,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
}

// ImportResult summarises a completed import run.
type ImportResult struct {
	RowsFetched    int           `json:"rows_fetched"`
	RowsImported   int           `json:"rows_imported"`
	RowsDropped    int           `json:"rows_dropped"`
	Duration       time.Duration `json:"-"`
	DurationMillis int64         `json:"duration_ms"`
}

// Run executes fetch -> normalize -> replace. A fetch failure aborts
// before any mutation; a row failure during the replace (e.g. a
// malformed date) rolls the store back to its pre-import state.
func (s *ImportService) Run(ctx context.Context) (ImportResult, error) {
	start := time.Now()

	rows, err := s.source.Fetch(ctx, s.spreadsheetID, s.sheetName)
	if err != nil {
		return ImportResult{}, fmt.Errorf("fetch sheet %q: %w", s.sheetName, err)
	}

	candidates := NormalizeRows(rows)

	imported, err := s.store.ReplaceTransactions(ctx, candidates)
	if err != nil {
		return ImportResult{}, fmt.Errorf("replace transactions: %w", err)
	}

	res := ImportResult{
		RowsFetched:  len(rows),
		RowsImported: imported,
		RowsDropped:  len(rows) - len(candidates),
		Duration:     time.Since(start),
	}
	res.DurationMillis = res.Duration.Milliseconds()

	slog.InfoContext(ctx, "Import completed",
		"sheet", s.sheetName,
		"rows_fetched", res.RowsFetched,
		"rows_imported", res.RowsImported,
		"rows_dropped", res.RowsDropped,
		"duration_ms", res.DurationMillis)
	return res, nil
}
