package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"findash/internal/amqp"
	"findash/internal/core"
	"findash/internal/services"
	"findash/internal/storage"
)

type fakeStore struct {
	txns []core.Transaction
	err  error
}

func (f *fakeStore) Query(ctx context.Context, dr core.DateRange, _ storage.Filter) ([]core.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Transaction
	for _, t := range f.txns {
		if dr.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out, nil
}

type importerFunc func(ctx context.Context) (services.ImportResult, error)

func (f importerFunc) Run(ctx context.Context) (services.ImportResult, error) { return f(ctx) }

type fakePublisher struct {
	published []*amqp.ImportRequestMessage
	err       error
}

func (f *fakePublisher) PublishImportRequest(_ context.Context, msg *amqp.ImportRequestMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	return nil
}

func fixedNow() time.Time { return core.NewDate(2025, 6, 15) }

func testServer(t *testing.T, store TransactionStore, importer Importer, publisher ImportPublisher) *Server {
	t.Helper()
	return NewServer(":0", store, importer, publisher, Options{
		SalaryCategory: "[Salary]",
		SalaryAccount:  "Checking",
		Currency:       core.DefaultCurrency(),
		SheetName:      "Transactions",
		Now:            fixedNow,
	})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func seedTxns() []core.Transaction {
	return []core.Transaction{
		{ID: 1, Account: "Checking", AccountActive: true, Date: core.NewDate(2025, 6, 1),
			Description: "groceries", Category: "Food", MoneyOut: 120.50, Balance: 900},
		{ID: 2, Account: "Checking", AccountActive: true, Date: core.NewDate(2025, 6, 3),
			Description: "rent", Category: "Housing", MoneyOut: 1500, Balance: -600},
		{ID: 3, Account: "Checking", AccountActive: true, Date: core.NewDate(2025, 6, 5),
			Description: "salary", Category: "[Salary]", MoneyIn: 3000, Balance: 2400},
	}
}

const fullRange = "start=2025-01-01&end=2025-12-31"

func TestSummaryEndpoint(t *testing.T) {
	s := testServer(t, &fakeStore{txns: seedTxns()}, nil, nil)
	rec := get(t, s, "/summary?"+fullRange)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body map[string]struct {
		Labels []string  `json:"labels"`
		Data   []float64 `json:"data"`
		Colors []string  `json:"colors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	series, ok := body["Checking"]
	if !ok {
		t.Fatalf("missing Checking series: %v", body)
	}
	if len(series.Labels) != 2 || series.Labels[0] != "Housing" {
		t.Fatalf("labels = %v", series.Labels)
	}
	if len(series.Colors) != 2 {
		t.Fatalf("colors = %v", series.Colors)
	}
}

func TestSummaryRangeFilter(t *testing.T) {
	s := testServer(t, &fakeStore{txns: seedTxns()}, nil, nil)
	rec := get(t, s, "/summary?start=2025-06-02&end=2025-06-30")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Food") {
		t.Fatalf("range filter leaked earlier transactions: %s", rec.Body.String())
	}
}

func TestBadRangeRejected(t *testing.T) {
	s := testServer(t, &fakeStore{txns: seedTxns()}, nil, nil)

	for _, path := range []string{
		"/summary",
		"/summary?start=2025-01-01",
		"/summary?start=junk&end=2025-06-30",
		"/summary?start=2025-06-01&end=15/06/2025",
		"/summary?start=2025-06-30&end=2025-06-01",
	} {
		rec := get(t, s, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestCategoryTransactionRequiresCategory(t *testing.T) {
	s := testServer(t, &fakeStore{txns: seedTxns()}, nil, nil)
	rec := get(t, s, "/category_transaction?"+fullRange)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTrendGroupByValidation(t *testing.T) {
	s := testServer(t, &fakeStore{txns: seedTxns()}, nil, nil)

	if rec := get(t, s, "/trend?group_by=week&"+fullRange); rec.Code != http.StatusBadRequest {
		t.Fatalf("group_by=week status = %d, want 400", rec.Code)
	}
	if rec := get(t, s, "/trend?group_by=year&"+fullRange); rec.Code != http.StatusOK {
		t.Fatalf("group_by=year status = %d, want 200", rec.Code)
	}
}

func TestAnalysisUsesInjectedClock(t *testing.T) {
	s := testServer(t, &fakeStore{txns: seedTxns()}, nil, nil)
	rec := get(t, s, "/analysis")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Months     []string `json:"months"`
		LastIncome struct {
			Amount float64 `json:"amount"`
			Date   string  `json:"date"`
		} `json:"last_income"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Months) != 12 || body.Months[11] != "2025-06" {
		t.Fatalf("months = %v", body.Months)
	}
	if body.LastIncome.Amount != 3000 || body.LastIncome.Date != "2025-06-05" {
		t.Fatalf("last income = %+v", body.LastIncome)
	}
}

func TestTransactionsListingFormatsAmounts(t *testing.T) {
	s := testServer(t, &fakeStore{txns: seedTxns()}, nil, nil)
	rec := get(t, s, "/transactions?"+fullRange)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Count        int `json:"count"`
		Transactions []struct {
			MoneyOutDisplay string `json:"money_out_display"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 3 {
		t.Fatalf("count = %d", body.Count)
	}
	if body.Transactions[1].MoneyOutDisplay != "$1,500.00" {
		t.Fatalf("display = %q", body.Transactions[1].MoneyOutDisplay)
	}
}

func TestStoreFailureIs500(t *testing.T) {
	s := testServer(t, &fakeStore{err: errors.New("disk gone")}, nil, nil)
	rec := get(t, s, "/summary?"+fullRange)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestImportSync(t *testing.T) {
	importer := importerFunc(func(context.Context) (services.ImportResult, error) {
		return services.ImportResult{RowsFetched: 5, RowsImported: 4, RowsDropped: 1}, nil
	})
	s := testServer(t, &fakeStore{}, importer, nil)

	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res services.ImportResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.RowsImported != 4 {
		t.Fatalf("imported = %d", res.RowsImported)
	}
}

func TestImportMethodNotAllowed(t *testing.T) {
	s := testServer(t, &fakeStore{}, nil, nil)
	rec := get(t, s, "/import")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestImportErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"source unreachable", core.ErrSourceUnreachable, http.StatusBadGateway},
		{"bad date", core.ErrBadDate, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			importer := importerFunc(func(context.Context) (services.ImportResult, error) {
				return services.ImportResult{}, tc.err
			})
			s := testServer(t, &fakeStore{}, importer, nil)
			req := httptest.NewRequest(http.MethodPost, "/import", nil)
			rec := httptest.NewRecorder()
			s.Server.Handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestImportAsync(t *testing.T) {
	pub := &fakePublisher{}
	s := testServer(t, &fakeStore{}, nil, pub)

	req := httptest.NewRequest(http.MethodPost, "/import?async=1", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(pub.published) != 1 || pub.published[0].SheetName != "Transactions" {
		t.Fatalf("published = %+v", pub.published)
	}
}

func TestImportAsyncUnconfigured(t *testing.T) {
	s := testServer(t, &fakeStore{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/import?async=1", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := testServer(t, &fakeStore{}, nil, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := get(t, s, path); rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := testServer(t, &fakeStore{}, nil, nil)
	rec := get(t, s, "/summary?"+fullRange)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}
