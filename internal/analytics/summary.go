package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"finance-tracker-backend/internal/records"
)

// Summary holds the headline figures of the dashboard.
type Summary struct {
	TotalExpenses float64 `json:"totalExpenses"`
	TotalIncome   float64 `json:"totalIncome"`
	NetBalance    float64 `json:"netBalance"`
	SavingsRate   float64 `json:"savingsRate"`
	TotalBought   float64 `json:"totalBought"`
	TotalSold     float64 `json:"totalSold"`
	NetInvestment float64 `json:"netInvestment"`
}

// Breakdown is the total of one label (category, source, recipient).
type Breakdown struct {
	Label      string   `json:"label"`
	Amount     float64  `json:"amount"`
	Percentage *float64 `json:"percentage"`
}

type MonthlyFlow struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// Summarize totals cash flow and share trading. Sums are accumulated in
// decimal so that cents add up exactly. The savings rate is 0 without income.
func Summarize(expenses []records.Expense, incomes []records.Income, shares []records.ShareTransaction) Summary {
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(decimal.NewFromFloat(e.Amount))
	}
	totalIncome := decimal.Zero
	for _, i := range incomes {
		totalIncome = totalIncome.Add(decimal.NewFromFloat(i.Amount))
	}
	bought, sold := decimal.Zero, decimal.Zero
	for _, s := range shares {
		value := decimal.NewFromFloat(s.Price).Mul(decimal.NewFromFloat(s.Quantity))
		switch s.Type {
		case records.Buy:
			bought = bought.Add(value)
		case records.Sell:
			sold = sold.Add(value)
		}
	}

	net := totalIncome.Sub(totalExpenses)
	summary := Summary{
		TotalExpenses: totalExpenses.InexactFloat64(),
		TotalIncome:   totalIncome.InexactFloat64(),
		NetBalance:    net.InexactFloat64(),
		TotalBought:   bought.InexactFloat64(),
		TotalSold:     sold.InexactFloat64(),
		NetInvestment: bought.Sub(sold).InexactFloat64(),
	}
	if totalIncome.IsPositive() {
		summary.SavingsRate = net.Div(totalIncome).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}
	return summary
}

func ExpensesByCategory(expenses []records.Expense) []Breakdown {
	b := newBreakdownBuilder()
	for _, e := range expenses {
		b.add(e.Category, e.Amount)
	}
	return b.build()
}

// ExpensesByRecipient groups expenses by recipient; a missing recipient
// counts as "Unknown".
func ExpensesByRecipient(expenses []records.Expense) []Breakdown {
	b := newBreakdownBuilder()
	for _, e := range expenses {
		b.add(e.RecipientOrUnknown(), e.Amount)
	}
	return b.build()
}

func IncomeBySource(incomes []records.Income) []Breakdown {
	b := newBreakdownBuilder()
	for _, i := range incomes {
		b.add(i.Source, i.Amount)
	}
	return b.build()
}

// Monthly groups cash flow by calendar month (YYYY-MM), ascending.
func Monthly(expenses []records.Expense, incomes []records.Income) []MonthlyFlow {
	type sums struct{ income, expense decimal.Decimal }
	byMonth := make(map[string]*sums)
	get := func(date string) *sums {
		month := date
		if len(month) >= 7 {
			month = month[:7]
		}
		s, ok := byMonth[month]
		if !ok {
			s = &sums{income: decimal.Zero, expense: decimal.Zero}
			byMonth[month] = s
		}
		return s
	}
	for _, e := range expenses {
		s := get(e.Date)
		s.expense = s.expense.Add(decimal.NewFromFloat(e.Amount))
	}
	for _, i := range incomes {
		s := get(i.Date)
		s.income = s.income.Add(decimal.NewFromFloat(i.Amount))
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlyFlow, len(months))
	for idx, m := range months {
		s := byMonth[m]
		out[idx] = MonthlyFlow{
			Month:    m,
			Income:   s.income.InexactFloat64(),
			Expenses: s.expense.InexactFloat64(),
			Net:      s.income.Sub(s.expense).InexactFloat64(),
		}
	}
	return out
}

type breakdownBuilder struct {
	totals map[string]decimal.Decimal
	total  decimal.Decimal
}

func newBreakdownBuilder() *breakdownBuilder {
	return &breakdownBuilder{totals: make(map[string]decimal.Decimal), total: decimal.Zero}
}

func (b *breakdownBuilder) add(label string, amount float64) {
	d := decimal.NewFromFloat(amount)
	b.totals[label] = b.totals[label].Add(d)
	b.total = b.total.Add(d)
}

// build orders labels by amount descending, then by label.
func (b *breakdownBuilder) build() []Breakdown {
	out := make([]Breakdown, 0, len(b.totals))
	total := b.total.InexactFloat64()
	for label, amount := range b.totals {
		a := amount.InexactFloat64()
		out = append(out, Breakdown{Label: label, Amount: a, Percentage: percent(a, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Label < out[j].Label
	})
	return out
}
