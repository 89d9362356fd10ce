package services

import (
	"findash/internal/core"
	"findash/internal/sheets"
)

// Spreadsheet column names as they appear in the header row.
const (
	ColAccount     = "Income and Expense Account"
	ColDate        = "Date"
	ColDescription = "Description"
	ColCategory    = "Category"
	ColMoneyIn     = "Income Money IN"
	ColMoneyOut    = "Expense Money OUT"
	ColBalance     = "Account Balance"
)

// totalMarker labels the sheet's footer aggregate row, which is not a
// transaction.
const totalMarker = "Total"

// NormalizeRows cleans raw sheet rows into transaction candidates.
// Rows without an account name and the "Total" footer row are dropped.
// Monetary cells default to "0" when missing and resolve to 0.0 when
// unparsable; normalization never fails. Row order is preserved.
func NormalizeRows(rows []sheets.Row) []core.TransactionCandidate {
	out := make([]core.TransactionCandidate, 0, len(rows))
	for _, row := range rows {
		account := row.Get(ColAccount, "")
		if account == "" || account == totalMarker {
			continue
		}
		out = append(out, core.TransactionCandidate{
			Account:     account,
			Date:        row.Get(ColDate, ""),
			Description: row.Get(ColDescription, ""),
			Category:    row.Get(ColCategory, ""),
			MoneyIn:     core.CleanMoney(row.Get(ColMoneyIn, "0")),
			MoneyOut:    core.CleanMoney(row.Get(ColMoneyOut, "0")),
			Balance:     core.CleanMoney(row.Get(ColBalance, "0")),
		})
	}
	return out
}
