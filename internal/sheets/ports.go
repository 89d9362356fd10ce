package sheets

import "context"

// Row is one spreadsheet record keyed by header column name. Missing
// cells are simply absent; Get papers over that.
type Row map[string]string

// Get returns the named column or the fallback when the cell is
// missing or blank.
func (r Row) Get(column, fallback string) string {
	if v, ok := r[column]; ok && v != "" {
		return v
	}
	return fallback
}

// RowSource is the ingestion port: it fetches the rows of a named sheet
// inside a spreadsheet, in sheet order, with the header row already
// folded into the column keys. A transport failure surfaces as
// core.ErrSourceUnreachable (wrapped).
type RowSource interface {
	Fetch(ctx context.Context, spreadsheetID, sheetName string) ([]Row, error)
}
