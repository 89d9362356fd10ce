// Package core holds the domain types shared by the import pipeline and
// the aggregation engine, plus money cleaning and formatting helpers.
//
// Monetary fields arrive from the spreadsheet as display strings
// ("1,234.50") and are stored as float64, matching the source data. Use
// CleanMoney when normalizing rows and FormatAmount when rendering.
package core

import (
	"strconv"
	"strings"
)

// CurrencyConfig parameterises display formatting. Formatting is a pure
// function of this config; no process-wide locale state is mutated.
type CurrencyConfig struct {
	Symbol       string // e.g. "$" or "€"
	DecimalSep   string // e.g. "."
	ThousandsSep string // e.g. ","
}

// DefaultCurrency formats like the source spreadsheet: $1,234.50.
func DefaultCurrency() CurrencyConfig {
	return CurrencyConfig{Symbol: "$", DecimalSep: ".", ThousandsSep: ","}
}

// CleanMoney parses a raw monetary cell into a float. Thousands
// separators are stripped and surrounding whitespace trimmed; anything
// unparsable (empty string, "N/A", stray text) resolves to 0.0. It
// never fails: a dirty cell becomes a zero amount, not an error.
func CleanMoney(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// FormatAmount renders v with two decimals, a thousands separator every
// three integer digits and the configured currency symbol prefix.
// Negative amounts render as -$1,234.50.
func FormatAmount(cfg CurrencyConfig, v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString(cfg.Symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(cfg.ThousandsSep)
		}
		b.WriteRune(r)
	}
	b.WriteString(cfg.DecimalSep)
	b.WriteString(fracPart)
	return b.String()
}
