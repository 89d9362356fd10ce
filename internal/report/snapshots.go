package report

import (
	"sort"

	"findash/internal/core"
)

type (
	// IncomeResult buckets money_in per account per calendar month.
	// Every account series is dense over the shared period list.
	IncomeResult struct {
		Periods  []string             `json:"periods"`
		Accounts map[string][]float64 `json:"accounts"`
		Totals   map[string]float64   `json:"totals"`
	}

	// AccountSaving is one account's savings snapshot: total deposits
	// in range plus a dense monthly series.
	AccountSaving struct {
		Total  float64   `json:"total"`
		Series []float64 `json:"series"`
	}

	// SavingResult summarises "[Saving]" activity per account.
	SavingResult struct {
		Periods  []string                 `json:"periods"`
		Accounts map[string]AccountSaving `json:"accounts"`
	}
)

// IncomeSummary aggregates incoming money (money_in > 0) by account
// and calendar month. Note this departs from the engine's default
// money_out filter: income is the money_in side.
func IncomeSummary(txns []core.Transaction) IncomeResult {
	cells := make(map[string]map[string]float64)
	periodSet := make(map[string]struct{})
	totals := make(map[string]float64)

	for _, t := range txns {
		if t.MoneyIn <= 0 {
			continue
		}
		period := core.GroupByMonth.PeriodLabel(t.Date)
		periodSet[period] = struct{}{}
		byPeriod, ok := cells[t.Account]
		if !ok {
			byPeriod = make(map[string]float64)
			cells[t.Account] = byPeriod
		}
		byPeriod[period] += t.MoneyIn
		totals[t.Account] += t.MoneyIn
	}

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	accounts := make(map[string][]float64, len(cells))
	for account, byPeriod := range cells {
		series := make([]float64, len(periods))
		for i, p := range periods {
			series[i] = byPeriod[p]
		}
		accounts[account] = series
	}

	return IncomeResult{Periods: periods, Accounts: accounts, Totals: totals}
}

// SavingSummary reports "[Saving]" deposits (money_out into the saving
// category) per account with a dense monthly series.
func SavingSummary(txns []core.Transaction) SavingResult {
	cells := make(map[string]map[string]float64)
	periodSet := make(map[string]struct{})
	totals := make(map[string]float64)

	for _, t := range txns {
		if t.Category != core.SavingCategory || t.MoneyOut <= 0 {
			continue
		}
		period := core.GroupByMonth.PeriodLabel(t.Date)
		periodSet[period] = struct{}{}
		byPeriod, ok := cells[t.Account]
		if !ok {
			byPeriod = make(map[string]float64)
			cells[t.Account] = byPeriod
		}
		byPeriod[period] += t.MoneyOut
		totals[t.Account] += t.MoneyOut
	}

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	accounts := make(map[string]AccountSaving, len(cells))
	for account, byPeriod := range cells {
		series := make([]float64, len(periods))
		for i, p := range periods {
			series[i] = byPeriod[p]
		}
		accounts[account] = AccountSaving{Total: totals[account], Series: series}
	}

	return SavingResult{Periods: periods, Accounts: accounts}
}
