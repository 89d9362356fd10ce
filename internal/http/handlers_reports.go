package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"findash/internal/core"
	"findash/internal/report"
	"findash/internal/storage"
)

const isoDate = "2006-01-02"

// parseRange reads the required start/end query parameters (ISO dates,
// inclusive bounds).
func (s *Server) parseRange(r *http.Request) (core.DateRange, error) {
	rawStart := r.URL.Query().Get("start")
	rawEnd := r.URL.Query().Get("end")
	if rawStart == "" || rawEnd == "" {
		return core.DateRange{}, fmt.Errorf("%w: start and end are required", core.ErrInvalidRange)
	}
	start, err := time.Parse(isoDate, rawStart)
	if err != nil {
		return core.DateRange{}, fmt.Errorf("%w: start %q", core.ErrInvalidRange, rawStart)
	}
	end, err := time.Parse(isoDate, rawEnd)
	if err != nil {
		return core.DateRange{}, fmt.Errorf("%w: end %q", core.ErrInvalidRange, rawEnd)
	}
	dr := core.DateRange{Start: start, End: end}
	if err := dr.Validate(); err != nil {
		return core.DateRange{}, err
	}
	return dr, nil
}

// queryRange validates parameters and loads the matching transactions.
// A nil slice with a false second return means the response was already
// written.
func (s *Server) queryRange(w http.ResponseWriter, r *http.Request, f storage.Filter) ([]core.Transaction, bool) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return nil, false
	}
	dr, err := s.parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	txns, err := s.store.Query(r.Context(), dr, f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "transaction query failed")
		return nil, false
	}
	return txns, true
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	txns, ok := s.queryRange(w, r, storage.Filter{})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.CategoryBreakdown(txns))
}

func (s *Server) handleTopTransactions(w http.ResponseWriter, r *http.Request) {
	txns, ok := s.queryRange(w, r, storage.Filter{})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.TopByAccount(txns, ""))
}

func (s *Server) handleTopByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category parameter is required")
		return
	}
	txns, ok := s.queryRange(w, r, storage.Filter{Category: category})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.TopByAccount(txns, category))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	g := core.GroupByMonth
	if raw := r.URL.Query().Get("group_by"); raw != "" {
		g = core.Granularity(raw)
		if !g.Valid() {
			writeError(w, http.StatusBadRequest, "group_by must be 'month' or 'year'")
			return
		}
	}
	txns, ok := s.queryRange(w, r, storage.Filter{})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.Trend(txns, g))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	now := s.opts.Now()
	window := core.DateRange{Start: now.AddDate(-1, 0, 0), End: now}
	txns, err := s.store.Query(r.Context(), window, storage.Filter{})
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "transaction query failed")
		return
	}
	res := report.Rolling(txns, now, report.RollingOptions{
		SalaryCategory: s.opts.SalaryCategory,
		SalaryAccount:  s.opts.SalaryAccount,
	})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	txns, ok := s.queryRange(w, r, storage.Filter{})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.IncomeSummary(txns))
}

func (s *Server) handleSaving(w http.ResponseWriter, r *http.Request) {
	txns, ok := s.queryRange(w, r, storage.Filter{})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report.SavingSummary(txns))
}

// transactionRow is one ledger entry in the raw listing, with amounts
// pre-formatted in the configured currency for display.
type transactionRow struct {
	Date            string  `json:"date"`
	Account         string  `json:"account"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	MoneyIn         float64 `json:"money_in"`
	MoneyOut        float64 `json:"money_out"`
	Balance         float64 `json:"balance"`
	MoneyInDisplay  string  `json:"money_in_display"`
	MoneyOutDisplay string  `json:"money_out_display"`
	BalanceDisplay  string  `json:"balance_display"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	f := storage.Filter{
		Category: r.URL.Query().Get("category"),
		Account:  r.URL.Query().Get("account"),
	}
	txns, ok := s.queryRange(w, r, f)
	if !ok {
		return
	}
	rows := make([]transactionRow, len(txns))
	for i, t := range txns {
		rows[i] = transactionRow{
			Date:            t.Date.Format(isoDate),
			Account:         t.Account,
			Description:     t.Description,
			Category:        t.Category,
			MoneyIn:         t.MoneyIn,
			MoneyOut:        t.MoneyOut,
			Balance:         t.Balance,
			MoneyInDisplay:  core.FormatAmount(s.opts.Currency, t.MoneyIn),
			MoneyOutDisplay: core.FormatAmount(s.opts.Currency, t.MoneyOut),
			BalanceDisplay:  core.FormatAmount(s.opts.Currency, t.Balance),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(rows),
		"transactions": rows,
	})
}
