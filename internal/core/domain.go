package core

import (
	"errors"
	"time"
)

const (
	GroupByMonth Granularity = "month"
	GroupByYear  Granularity = "year"

	// TransferCategory marks internal movements between accounts and is
	// excluded from the rolling analysis.
	TransferCategory = "[Transfer]"

	// SavingCategory marks savings deposits; grand totals are reported
	// both with and without it.
	SavingCategory = "[Saving]"
)

type (
	// Granularity selects the period bucketing for trend reports.
	Granularity string

	// Account is a named money container (bank/savings account).
	// Accounts are created on first reference during import and never
	// deleted, only deactivated.
	Account struct {
		ID     int64
		Name   string
		Active bool
	}

	// Transaction is one ledger entry as stored. Account carries the
	// owning account's name; it stays empty if the account reference
	// was cleared.
	Transaction struct {
		ID            int64
		Account       string
		AccountActive bool
		Date          time.Time
		Description   string
		Category      string
		MoneyIn       float64
		MoneyOut      float64
		Balance       float64
	}

	// TransactionCandidate is a cleaned spreadsheet row ready for
	// insertion. Date stays a string in month/day/year form; it is
	// parsed inside the store replace so a malformed date rolls the
	// whole import back.
	TransactionCandidate struct {
		Account     string
		Date        string
		Description string
		Category    string
		MoneyIn     float64
		MoneyOut    float64
		Balance     float64
	}

	// DateRange is an inclusive [Start, End] date interval.
	DateRange struct {
		Start time.Time
		End   time.Time
	}
)

var (
	// ErrSourceUnreachable signals a failed spreadsheet fetch; the
	// store is untouched when this is returned.
	ErrSourceUnreachable = errors.New("source unreachable")

	// ErrBadDate signals a row date that does not match the expected
	// month/day/year format during import.
	ErrBadDate = errors.New("malformed transaction date")

	// ErrInvalidRange signals malformed report query parameters.
	ErrInvalidRange = errors.New("invalid date range")
)

// DateLayout is the spreadsheet date format (month/day/year, no
// zero-padding required).
const DateLayout = "1/2/2006"

// NewDate builds a UTC midnight date, the normal form for transaction
// dates throughout the module.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// Validate checks that the range is well-formed: both bounds set and
// Start not after End.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrInvalidRange
	}
	if r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

// Contains reports whether d falls within the range, bounds included.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Valid reports whether g is a supported grouping granularity.
func (g Granularity) Valid() bool {
	return g == GroupByMonth || g == GroupByYear
}

// PeriodLabel buckets d into a period label: "2006-01" for monthly
// grouping, "2006" for yearly. Labels sort ascending lexicographically.
func (g Granularity) PeriodLabel(d time.Time) string {
	if g == GroupByYear {
		return d.Format("2006")
	}
	return d.Format("2006-01")
}
