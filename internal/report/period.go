package report

import (
	"errors"
	"strings"
	"time"

	"finance-tracker-backend/internal/records"
)

var ErrUnknownPeriod = errors.New("unknown report period")

// Period selects the records a report covers, relative to the time it is generated.
type Period string

const (
	AllTime   Period = "all"
	ThisMonth Period = "this_month"
	LastMonth Period = "last_month"
	ThisYear  Period = "this_year"
	LastYear  Period = "last_year"
)

var periodLabels = map[Period]string{
	AllTime:   "All Time",
	ThisMonth: "This Month",
	LastMonth: "Last Month",
	ThisYear:  "This Year",
	LastYear:  "Last Year",
}

// ParsePeriod accepts both the identifiers ("last_month") and the display
// labels ("Last Month"). An empty string means AllTime.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AllTime, nil
	}
	normalized := Period(strings.ReplaceAll(strings.ToLower(s), " ", "_"))
	if _, ok := periodLabels[normalized]; ok {
		return normalized, nil
	}
	return "", ErrUnknownPeriod
}

func (p Period) Label() string {
	return periodLabels[p]
}

// Range returns the inclusive date bounds of the period. An empty bound is open.
// The current month and year are open-ended, so future-dated records are kept.
func (p Period) Range(now time.Time) (from, to string) {
	y, m, _ := now.Date()
	loc := now.Location()
	switch p {
	case ThisMonth:
		return records.FormatDate(time.Date(y, m, 1, 0, 0, 0, 0, loc)), ""
	case LastMonth:
		first := time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		last := time.Date(y, m, 0, 0, 0, 0, 0, loc)
		return records.FormatDate(first), records.FormatDate(last)
	case ThisYear:
		return records.FormatDate(time.Date(y, time.January, 1, 0, 0, 0, 0, loc)), ""
	case LastYear:
		return records.FormatDate(time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc)),
			records.FormatDate(time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc))
	}
	return "", ""
}

func (p Period) contains(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

func FilterExpenses(expenses []records.Expense, p Period, now time.Time) []records.Expense {
	from, to := p.Range(now)
	out := make([]records.Expense, 0, len(expenses))
	for _, e := range expenses {
		if p.contains(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out
}

func FilterIncomes(incomes []records.Income, p Period, now time.Time) []records.Income {
	from, to := p.Range(now)
	out := make([]records.Income, 0, len(incomes))
	for _, i := range incomes {
		if p.contains(i.Date, from, to) {
			out = append(out, i)
		}
	}
	return out
}

func FilterShares(shares []records.ShareTransaction, p Period, now time.Time) []records.ShareTransaction {
	from, to := p.Range(now)
	out := make([]records.ShareTransaction, 0, len(shares))
	for _, s := range shares {
		if p.contains(s.Date, from, to) {
			out = append(out, s)
		}
	}
	return out
}
