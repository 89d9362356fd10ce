// Package report is the aggregation engine. Every operation is a pure
// function of the transactions it is given (plus an injected clock for
// the rolling analysis): no store access, no wall-clock reads, no
// shared state. Outputs are plain label/number structures that
// serialize directly into chart payloads.
//
// Unless an operation says otherwise, only transactions with
// money_out > 0 are considered.
package report

import (
	"sort"

	"findash/internal/core"
)

// TopN is the ranking depth for top-transaction and top-category
// selections.
const TopN = 10

// ChartSeries is one account's category breakdown: parallel label,
// value and color slices ordered by descending total.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
	Colors []string  `json:"colors"`
}

// CategoryBreakdown groups spending by (account, category) and sums
// money_out. Within each account, categories sort descending by total;
// ties keep their original encounter order.
func CategoryBreakdown(txns []core.Transaction) map[string]ChartSeries {
	totals := make(map[string]map[string]float64)
	order := make(map[string][]string)

	for _, t := range txns {
		if t.MoneyOut <= 0 {
			continue
		}
		byCat, ok := totals[t.Account]
		if !ok {
			byCat = make(map[string]float64)
			totals[t.Account] = byCat
		}
		if _, seen := byCat[t.Category]; !seen {
			order[t.Account] = append(order[t.Account], t.Category)
		}
		byCat[t.Category] += t.MoneyOut
	}

	out := make(map[string]ChartSeries, len(totals))
	for account, byCat := range totals {
		labels := order[account]
		sort.SliceStable(labels, func(i, j int) bool {
			return byCat[labels[i]] > byCat[labels[j]]
		})
		series := ChartSeries{
			Labels: labels,
			Data:   make([]float64, len(labels)),
			Colors: Colors(len(labels)),
		}
		for i, c := range labels {
			series.Data[i] = byCat[c]
		}
		out[account] = series
	}
	return out
}

// TransactionView is a serializable projection of one ledger entry.
type TransactionView struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	MoneyOut    float64 `json:"money_out"`
	Balance     float64 `json:"balance"`
}

// TopByAccount returns, per account, the top 10 transactions by
// money_out descending. With no category filter only money_out > 0
// qualifies; with a filter any money_out != 0 does. Ties break by date
// descending, then insertion id ascending, so the ranking is
// deterministic.
func TopByAccount(txns []core.Transaction, category string) map[string][]TransactionView {
	byAccount := make(map[string][]core.Transaction)
	for _, t := range txns {
		if category == "" {
			if t.MoneyOut <= 0 {
				continue
			}
		} else {
			if t.Category != category || t.MoneyOut == 0 {
				continue
			}
		}
		byAccount[t.Account] = append(byAccount[t.Account], t)
	}

	out := make(map[string][]TransactionView, len(byAccount))
	for account, list := range byAccount {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			if a.MoneyOut != b.MoneyOut {
				return a.MoneyOut > b.MoneyOut
			}
			if !a.Date.Equal(b.Date) {
				return a.Date.After(b.Date)
			}
			return a.ID < b.ID
		})
		if len(list) > TopN {
			list = list[:TopN]
		}
		views := make([]TransactionView, len(list))
		for i, t := range list {
			views[i] = TransactionView{
				Date:        t.Date.Format("2006-01-02"),
				Description: t.Description,
				Category:    t.Category,
				MoneyOut:    t.MoneyOut,
				Balance:     t.Balance,
			}
		}
		out[account] = views
	}
	return out
}
