// Package analytics derives chart and table data from transaction records:
// MACD over daily net cash flow, portfolio holdings and allocation, synthetic
// price history and cash-flow breakdowns.
//
// Every function is a pure transformation of its arguments and is safe to
// call concurrently.
package analytics

import (
	"math"
	"sort"

	"finance-tracker-backend/internal/records"
)

// DailyFlowPoint totals the expenses and income recorded on one date.
type DailyFlowPoint struct {
	Date         string  `json:"date"`
	TotalExpense float64 `json:"totalExpense"`
	TotalIncome  float64 `json:"totalIncome"`
}

// Net is income minus expenses for the day.
func (p DailyFlowPoint) Net() float64 {
	return p.TotalIncome - p.TotalExpense
}

// MACDPoint is one chart point of the cash-flow MACD.
type MACDPoint struct {
	Date      string  `json:"date"`
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
	Expenses  float64 `json:"expenses"`
	Income    float64 `json:"income"`
}

// MACDConfig holds the EMA periods of the indicator.
type MACDConfig struct {
	Fast   int
	Slow   int
	Signal int
}

var DefaultMACDConfig = MACDConfig{Fast: 12, Slow: 26, Signal: 9}

// DailyFlows groups expenses and income by exact date. Only dates that appear
// in either input produce a point; calendar gaps are not filled.
func DailyFlows(expenses []records.Expense, incomes []records.Income) []DailyFlowPoint {
	expenseByDate := make(map[string]float64)
	incomeByDate := make(map[string]float64)
	dates := make([]string, 0)

	seen := make(map[string]bool)
	addDate := func(date string) {
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}

	for _, e := range expenses {
		expenseByDate[e.Date] += e.Amount
		addDate(e.Date)
	}
	for _, i := range incomes {
		incomeByDate[i.Date] += i.Amount
		addDate(i.Date)
	}
	sort.Strings(dates)

	points := make([]DailyFlowPoint, len(dates))
	for idx, date := range dates {
		points[idx] = DailyFlowPoint{
			Date:         date,
			TotalExpense: expenseByDate[date],
			TotalIncome:  incomeByDate[date],
		}
	}
	return points
}

// MACD computes the 12/26/9 MACD of daily net cash flow.
func MACD(expenses []records.Expense, incomes []records.Income) []MACDPoint {
	return MACDWith(expenses, incomes, DefaultMACDConfig)
}

// MACDWith computes the MACD of daily net cash flow with the given periods.
// The series is indexed by distinct date, so a quiet week does not stretch the
// EMA window.
func MACDWith(expenses []records.Expense, incomes []records.Income, cfg MACDConfig) []MACDPoint {
	flows := DailyFlows(expenses, incomes)
	out := make([]MACDPoint, len(flows))
	if len(flows) == 0 {
		return out
	}

	net := make([]float64, len(flows))
	for i, p := range flows {
		net[i] = p.Net()
	}

	fast := EMA(net, cfg.Fast)
	slow := EMA(net, cfg.Slow)

	macdLine := make([]float64, len(net))
	for i := range net {
		macdLine[i] = fast[i] - slow[i]
	}
	signalLine := EMA(macdLine, cfg.Signal)

	for i, p := range flows {
		out[i] = MACDPoint{
			Date:      p.Date,
			MACD:      finiteOrZero(macdLine[i]),
			Signal:    finiteOrZero(signalLine[i]),
			Histogram: finiteOrZero(macdLine[i] - signalLine[i]),
			Expenses:  p.TotalExpense,
			Income:    p.TotalIncome,
		}
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
