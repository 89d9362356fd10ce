// Package memory is an in-memory RowSource used for tests and local
// development without Google credentials.
package memory

import (
	"context"
	"fmt"

	"findash/internal/core"
	ports "findash/internal/sheets"
)

type Source struct {
	sheets map[string][]ports.Row
	// Fail makes every Fetch return a source-unreachable error, for
	// exercising import failure paths.
	Fail bool
}

var _ ports.RowSource = (*Source)(nil)

func New() *Source {
	return &Source{sheets: make(map[string][]ports.Row)}
}

// SetSheet installs the rows returned for a sheet name.
func (s *Source) SetSheet(name string, rows []ports.Row) {
	s.sheets[name] = rows
}

// Fetch implements ports.RowSource. The spreadsheet ID is ignored;
// only the sheet name selects the stored rows.
func (s *Source) Fetch(_ context.Context, _, sheetName string) ([]ports.Row, error) {
	if s.Fail {
		return nil, fmt.Errorf("%w: memory source configured to fail", core.ErrSourceUnreachable)
	}
	rows, ok := s.sheets[sheetName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sheet %q", core.ErrSourceUnreachable, sheetName)
	}
	out := make([]ports.Row, len(rows))
	copy(out, rows)
	return out, nil
}
