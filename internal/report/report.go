// Package report assembles period-filtered report documents from records and
// the analytics derived from them.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-tracker-backend/internal/analytics"
	"finance-tracker-backend/internal/records"
)

var ErrUnknownKind = errors.New("unknown report kind")

type Kind string

const (
	ExpenseReport   Kind = "expenses"
	IncomeReport    Kind = "income"
	SharesReport    Kind = "shares"
	PortfolioReport Kind = "portfolio"
	SummaryReport   Kind = "summary"
)

var kindTitles = map[Kind]string{
	ExpenseReport:   "Expense Report",
	IncomeReport:    "Income Report",
	SharesReport:    "Share Transactions Report",
	PortfolioReport: "Portfolio Performance Report",
	SummaryReport:   "Financial Summary Report",
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := kindTitles[k]; !ok {
		return "", ErrUnknownKind
	}
	return k, nil
}

// Input is everything a report may draw from. Records are filtered by Period
// before use; the portfolio is valued with Prices.
type Input struct {
	Expenses []records.Expense
	Incomes  []records.Income
	Shares   []records.ShareTransaction
	Prices   analytics.PriceSource
	Period   Period
}

// Value is a report cell. Amounts are rendered as money, percents with a
// trailing %; a nil percent renders as "n/a".
type Value struct {
	Text    string   `json:"text,omitempty"`
	Amount  *float64 `json:"amount,omitempty"`
	Percent *float64 `json:"percent,omitempty"`
	NA      bool     `json:"na,omitempty"`
}

func Text(s string) Value { return Value{Text: s} }

func Amount(v float64) Value { return Value{Amount: &v} }

func Percent(v *float64) Value {
	if v == nil {
		return Value{NA: true}
	}
	p := *v
	return Value{Percent: &p}
}

func Number(v float64) Value {
	return Value{Text: strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")}
}

type Line struct {
	Label string `json:"label"`
	Value Value  `json:"value"`
}

type Table struct {
	Head []string  `json:"head"`
	Rows [][]Value `json:"rows"`
}

type Section struct {
	Heading string `json:"heading"`
	Lines   []Line `json:"lines,omitempty"`
	Table   *Table `json:"table,omitempty"`
}

type Document struct {
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Period      Period    `json:"period"`
	GeneratedAt time.Time `json:"generatedAt"`
	Sections    []Section `json:"sections"`
}

// Build assembles the report of the given kind.
func Build(kind Kind, in Input, now time.Time) (Document, error) {
	title, ok := kindTitles[kind]
	if !ok {
		return Document{}, ErrUnknownKind
	}
	if in.Period == "" {
		in.Period = AllTime
	}
	if _, ok := periodLabels[in.Period]; !ok {
		return Document{}, ErrUnknownPeriod
	}

	doc := Document{
		Kind:        kind,
		Title:       title,
		Subtitle:    subtitle(kind, in.Period, now),
		Period:      in.Period,
		GeneratedAt: now,
	}

	expenses := FilterExpenses(in.Expenses, in.Period, now)
	incomes := FilterIncomes(in.Incomes, in.Period, now)
	shares := FilterShares(in.Shares, in.Period, now)

	switch kind {
	case ExpenseReport:
		doc.Sections = expenseSections(expenses)
	case IncomeReport:
		doc.Sections = incomeSections(incomes)
	case SharesReport:
		doc.Sections = shareSections(shares)
	case PortfolioReport:
		// positions are valued over the whole history regardless of period
		doc.Sections = portfolioSections(analytics.Analyze(in.Shares, in.Prices))
	case SummaryReport:
		doc.Sections = summarySections(expenses, incomes, shares)
	}
	return doc, nil
}

func subtitle(kind Kind, p Period, now time.Time) string {
	switch {
	case kind == PortfolioReport || kind == SummaryReport:
		if p == AllTime {
			return "Generated on " + records.FormatDate(now)
		}
		return fmt.Sprintf("Period: %s, generated on %s", p.Label(), records.FormatDate(now))
	case p != AllTime:
		return "Period: " + p.Label()
	case kind == ExpenseReport:
		return "All Expenses"
	case kind == IncomeReport:
		return "All Income"
	default:
		return "All Transactions"
	}
}

func breakdownTable(head string, rows []analytics.Breakdown) *Table {
	t := &Table{Head: []string{head, "Amount", "Percentage"}, Rows: make([][]Value, 0, len(rows))}
	for _, b := range rows {
		t.Rows = append(t.Rows, []Value{Text(b.Label), Amount(b.Amount), Percent(b.Percentage)})
	}
	return t
}

func expenseSections(expenses []records.Expense) []Section {
	s := analytics.Summarize(expenses, nil, nil)
	list := &Table{Head: []string{"Date", "Category", "Description", "Recipient", "Amount"}, Rows: make([][]Value, 0, len(expenses))}
	for _, e := range expenses {
		list.Rows = append(list.Rows, []Value{Text(e.Date), Text(e.Category), Text(e.Description), Text(e.RecipientOrUnknown()), Amount(e.Amount)})
	}
	return []Section{
		{Heading: "Overview", Lines: []Line{
			{Label: "Total Expenses", Value: Amount(s.TotalExpenses)},
			{Label: "Transactions", Value: Number(float64(len(expenses)))},
		}},
		{Heading: "Expenses by Category", Table: breakdownTable("Category", analytics.ExpensesByCategory(expenses))},
		{Heading: "Expenses by Recipient", Table: breakdownTable("Recipient", analytics.ExpensesByRecipient(expenses))},
		{Heading: "Expenses", Table: list},
	}
}

func incomeSections(incomes []records.Income) []Section {
	s := analytics.Summarize(nil, incomes, nil)
	list := &Table{Head: []string{"Date", "Source", "Description", "Amount"}, Rows: make([][]Value, 0, len(incomes))}
	for _, i := range incomes {
		list.Rows = append(list.Rows, []Value{Text(i.Date), Text(i.Source), Text(i.Description), Amount(i.Amount)})
	}
	return []Section{
		{Heading: "Overview", Lines: []Line{
			{Label: "Total Income", Value: Amount(s.TotalIncome)},
			{Label: "Transactions", Value: Number(float64(len(incomes)))},
		}},
		{Heading: "Income by Source", Table: breakdownTable("Source", analytics.IncomeBySource(incomes))},
		{Heading: "Income", Table: list},
	}
}

func shareSections(shares []records.ShareTransaction) []Section {
	s := analytics.Summarize(nil, nil, shares)
	list := &Table{Head: []string{"Date", "Symbol", "Type", "Quantity", "Price", "Total", "Notes"}, Rows: make([][]Value, 0, len(shares))}
	for _, tx := range shares {
		list.Rows = append(list.Rows, []Value{
			Text(tx.Date), Text(tx.Symbol), Text(strings.ToUpper(string(tx.Type))),
			Number(tx.Quantity), Amount(tx.Price), Amount(tx.Value()), Text(tx.Notes),
		})
	}
	return []Section{
		{Heading: "Overview", Lines: []Line{
			{Label: "Total Bought", Value: Amount(s.TotalBought)},
			{Label: "Total Sold", Value: Amount(s.TotalSold)},
			{Label: "Net Investment", Value: Amount(s.NetInvestment)},
		}},
		{Heading: "Transactions", Table: list},
	}
}

func optionalAmount(v *float64) Value {
	if v == nil {
		return Value{NA: true}
	}
	return Amount(*v)
}

func portfolioSections(p analytics.Portfolio) []Section {
	holdings := &Table{
		Head: []string{"Symbol", "Quantity", "Avg Buy Price", "Current Price", "Total Value", "Profit/Loss", "P/L %"},
		Rows: make([][]Value, 0, len(p.Holdings)),
	}
	for _, h := range p.Holdings {
		holdings.Rows = append(holdings.Rows, []Value{
			Text(h.Symbol), Number(h.NetQuantity), optionalAmount(h.AvgBuyPrice), optionalAmount(h.CurrentPrice),
			Amount(h.TotalValue), optionalAmount(h.ProfitLoss), Percent(h.ProfitLossPercent),
		})
	}
	allocation := &Table{Head: []string{"Symbol", "Value", "Percentage"}, Rows: make([][]Value, 0, len(p.Allocation))}
	for _, a := range p.Allocation {
		allocation.Rows = append(allocation.Rows, []Value{Text(a.Symbol), Amount(a.Value), Percent(a.Percentage)})
	}
	return []Section{
		{Heading: "Portfolio Summary", Lines: []Line{
			{Label: "Total Portfolio Value", Value: Amount(p.Totals.TotalPortfolioValue)},
			{Label: "Total Profit/Loss", Value: Amount(p.Totals.TotalProfitLoss)},
			{Label: "Total Profit/Loss %", Value: Percent(p.Totals.TotalProfitLossPercent)},
		}},
		{Heading: "Holdings", Table: holdings},
		{Heading: "Allocation", Table: allocation},
	}
}

func summarySections(expenses []records.Expense, incomes []records.Income, shares []records.ShareTransaction) []Section {
	s := analytics.Summarize(expenses, incomes, shares)
	savings := s.SavingsRate

	monthly := &Table{Head: []string{"Month", "Income", "Expenses", "Net"}, Rows: [][]Value{}}
	for _, m := range analytics.Monthly(expenses, incomes) {
		monthly.Rows = append(monthly.Rows, []Value{Text(m.Month), Amount(m.Income), Amount(m.Expenses), Amount(m.Net)})
	}
	return []Section{
		{Heading: "Income and Expenses", Lines: []Line{
			{Label: "Total Income", Value: Amount(s.TotalIncome)},
			{Label: "Total Expenses", Value: Amount(s.TotalExpenses)},
			{Label: "Net Balance", Value: Amount(s.NetBalance)},
			{Label: "Savings Rate", Value: Percent(&savings)},
		}},
		{Heading: "Investments", Lines: []Line{
			{Label: "Total Bought", Value: Amount(s.TotalBought)},
			{Label: "Total Sold", Value: Amount(s.TotalSold)},
			{Label: "Net Investment", Value: Amount(s.NetInvestment)},
		}},
		{Heading: "Expense Breakdown by Category", Table: breakdownTable("Category", analytics.ExpensesByCategory(expenses))},
		{Heading: "Income Breakdown by Source", Table: breakdownTable("Source", analytics.IncomeBySource(incomes))},
		{Heading: "Monthly Breakdown", Table: monthly},
	}
}

// Filename names a downloaded report, e.g. expense_report_last_month_20240102T150405.md.
func Filename(kind Kind, p Period, now time.Time, ext string) string {
	name := strings.ReplaceAll(strings.ToLower(kindTitles[kind]), " ", "_")
	if p != "" && p != AllTime {
		name += "_" + string(p)
	}
	return fmt.Sprintf("%s_%s.%s", name, now.Format("20060102T150405"), ext)
}
