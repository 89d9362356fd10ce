package report

import (
	"sort"
	"time"

	"findash/internal/core"
)

const rollingMonths = 12

type (
	// RollingEntry is one (account, category) pair with a dense
	// 12-month spending series ending at the current month. Average is
	// the series sum divided by 12, regardless of how many months are
	// nonzero.
	RollingEntry struct {
		Account      string    `json:"account"`
		Category     string    `json:"category"`
		Series       []float64 `json:"series"`
		CurrentMonth float64   `json:"current_month"`
		Average      float64   `json:"average"`
	}

	// CategoryAverage aggregates one category across all accounts.
	CategoryAverage struct {
		Category     string  `json:"category"`
		Average      float64 `json:"average"`
		CurrentMonth float64 `json:"current_month"`
	}

	// RollingTotals carries the grand totals over all reported
	// categories, with variants that leave out savings deposits.
	RollingTotals struct {
		TotalAverage         float64 `json:"total_average"`
		CurrentMonthTotal    float64 `json:"current_month_total"`
		TotalAverageExSaving float64 `json:"total_average_ex_saving"`
		CurrentMonthExSaving float64 `json:"current_month_ex_saving"`
	}

	// LastIncome is the most recent salary transaction, zero-valued
	// when none exists.
	LastIncome struct {
		Amount float64 `json:"amount"`
		Date   string  `json:"date,omitempty"`
	}

	// RollingResult is the full rolling account/category analysis.
	RollingResult struct {
		Months     []string          `json:"months"`
		Entries    []RollingEntry    `json:"entries"`
		ByCategory []CategoryAverage `json:"by_category"`
		Totals     RollingTotals     `json:"totals"`
		LastIncome LastIncome        `json:"last_income"`
	}
)

// RollingOptions locates the designated salary stream for the
// last-income figure.
type RollingOptions struct {
	SalaryCategory string
	SalaryAccount  string
}

// Rolling computes the rolling account/category analysis over the 12
// calendar months ending at now. The clock is a parameter so results
// are reproducible. Transfers and inactive accounts are excluded.
// Entries are reported only when the current month's value is nonzero;
// the per-category aggregation covers every category seen in the
// window.
func Rolling(txns []core.Transaction, now time.Time, opts RollingOptions) RollingResult {
	// Anchor months at day one so AddDate arithmetic never skips a
	// short month.
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]string, rollingMonths)
	index := make(map[string]int, rollingMonths)
	for i := 0; i < rollingMonths; i++ {
		label := anchor.AddDate(0, i-rollingMonths+1, 0).Format("2006-01")
		months[i] = label
		index[label] = i
	}
	window := core.DateRange{Start: now.AddDate(-1, 0, 0), End: now}

	type pairKey struct{ account, category string }
	pairSeries := make(map[pairKey][]float64)
	var pairOrder []pairKey

	var last *core.Transaction
	for i := range txns {
		t := txns[i]
		if !window.Contains(t.Date) {
			continue
		}
		if t.Category == opts.SalaryCategory && t.Account == opts.SalaryAccount {
			if last == nil || t.Date.After(last.Date) ||
				(t.Date.Equal(last.Date) && t.ID > last.ID) {
				last = &txns[i]
			}
		}
		if t.MoneyOut <= 0 || t.Category == core.TransferCategory || !t.AccountActive {
			continue
		}
		bucket, ok := index[t.Date.Format("2006-01")]
		if !ok {
			continue
		}
		key := pairKey{t.Account, t.Category}
		series, seen := pairSeries[key]
		if !seen {
			series = make([]float64, rollingMonths)
			pairSeries[key] = series
			pairOrder = append(pairOrder, key)
		}
		series[bucket] += t.MoneyOut
	}
	sort.Slice(pairOrder, func(i, j int) bool {
		if pairOrder[i].account != pairOrder[j].account {
			return pairOrder[i].account < pairOrder[j].account
		}
		return pairOrder[i].category < pairOrder[j].category
	})

	res := RollingResult{Months: months}

	catSeries := make(map[string][]float64)
	for _, key := range pairOrder {
		series := pairSeries[key]
		sum := 0.0
		for _, v := range series {
			sum += v
		}
		currentVal := series[rollingMonths-1]

		if currentVal != 0 {
			res.Entries = append(res.Entries, RollingEntry{
				Account:      key.account,
				Category:     key.category,
				Series:       series,
				CurrentMonth: currentVal,
				Average:      sum / rollingMonths,
			})
		}

		global, ok := catSeries[key.category]
		if !ok {
			global = make([]float64, rollingMonths)
			catSeries[key.category] = global
		}
		for i, v := range series {
			global[i] += v
		}
	}

	for category, series := range catSeries {
		sum := 0.0
		for _, v := range series {
			sum += v
		}
		res.ByCategory = append(res.ByCategory, CategoryAverage{
			Category:     category,
			Average:      sum / rollingMonths,
			CurrentMonth: series[rollingMonths-1],
		})
	}
	sort.Slice(res.ByCategory, func(i, j int) bool {
		if res.ByCategory[i].Average != res.ByCategory[j].Average {
			return res.ByCategory[i].Average > res.ByCategory[j].Average
		}
		return res.ByCategory[i].Category < res.ByCategory[j].Category
	})

	for _, ca := range res.ByCategory {
		res.Totals.TotalAverage += ca.Average
		res.Totals.CurrentMonthTotal += ca.CurrentMonth
		if ca.Category != core.SavingCategory {
			res.Totals.TotalAverageExSaving += ca.Average
			res.Totals.CurrentMonthExSaving += ca.CurrentMonth
		}
	}

	if last != nil {
		res.LastIncome = LastIncome{
			Amount: last.MoneyIn,
			Date:   last.Date.Format("2006-01-02"),
		}
	}
	return res
}
