// Package google fetches transaction rows from a Google spreadsheet
// using the Sheets API with service-account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"findash/internal/core"
	ports "findash/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc *gsheet.Service
}

var _ ports.RowSource = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Fetch implements ports.RowSource. The first row of the sheet is the
// header; every following row is keyed by it. A transport or API
// failure wraps core.ErrSourceUnreachable so the import pipeline can
// abort before touching the store.
func (c *Client) Fetch(ctx context.Context, spreadsheetID, sheetName string) ([]ports.Row, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:Z", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrSourceUnreachable, rng, err)
	}
	rows := MapRows(resp.Values)
	slog.InfoContext(ctx, "Fetched sheet rows",
		"spreadsheet_id", spreadsheetID,
		"sheet", sheetName,
		"rows", len(rows))
	return rows, nil
}

// MapRows folds the header row into column-keyed records. Rows shorter
// than the header keep only the columns they have; completely empty
// rows are dropped.
func MapRows(values [][]any) []ports.Row {
	if len(values) == 0 {
		return nil
	}
	header := toStrings(values[0])
	out := make([]ports.Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		cols := toStrings(raw)
		row := ports.Row{}
		empty := true
		for i, name := range header {
			if name == "" || i >= len(cols) {
				continue
			}
			row[name] = cols[i]
			if cols[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		out = append(out, row)
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
