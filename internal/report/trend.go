package report

import (
	"sort"

	"findash/internal/core"
)

// TrendResult is a dense period × category spending matrix. Series is
// parallel to Categories; each row has exactly one value per period,
// zero when nothing matched. Periods sort ascending (labels are
// zero-padded, so lexicographic order is chronological).
type TrendResult struct {
	Periods    []string    `json:"periods"`
	Categories []string    `json:"categories"`
	Series     [][]float64 `json:"series"`
}

// Trend picks the top 10 categories by total money_out over the whole
// input and buckets their spending by calendar month or year. Ties in
// the top-category selection break by category name ascending.
func Trend(txns []core.Transaction, g core.Granularity) TrendResult {
	catTotals := make(map[string]float64)
	cells := make(map[string]map[string]float64) // category -> period -> sum
	periodSet := make(map[string]struct{})

	for _, t := range txns {
		if t.MoneyOut <= 0 {
			continue
		}
		period := g.PeriodLabel(t.Date)
		periodSet[period] = struct{}{}
		catTotals[t.Category] += t.MoneyOut
		byPeriod, ok := cells[t.Category]
		if !ok {
			byPeriod = make(map[string]float64)
			cells[t.Category] = byPeriod
		}
		byPeriod[period] += t.MoneyOut
	}

	categories := make([]string, 0, len(catTotals))
	for c := range catTotals {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if catTotals[categories[i]] != catTotals[categories[j]] {
			return catTotals[categories[i]] > catTotals[categories[j]]
		}
		return categories[i] < categories[j]
	})
	if len(categories) > TopN {
		categories = categories[:TopN]
	}

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	series := make([][]float64, len(categories))
	for i, c := range categories {
		row := make([]float64, len(periods))
		for j, p := range periods {
			row[j] = cells[c][p] // zero when absent: dense series
		}
		series[i] = row
	}

	return TrendResult{Periods: periods, Categories: categories, Series: series}
}
