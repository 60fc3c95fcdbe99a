package main

import (
	"strings"

	"finance-tracker-backend/internal/analytics"
	"finance-tracker-backend/internal/records"
)

// ExpenseRequest is the body of POST /api/expenses
type ExpenseRequest struct {
	Amount      *float64 `json:"amount" binding:"required"`
	Category    string   `json:"category" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=255"`
	Date        string   `json:"date" binding:"required"`
	Location    string   `json:"location" binding:"max=255"`
	Recipient   string   `json:"recipient" binding:"max=255"`
}

func (r ExpenseRequest) toRecord(id string) records.Expense {
	return records.Expense{
		ID:          id,
		Amount:      records.NormalizeAmount(*r.Amount),
		Category:    strings.TrimSpace(r.Category),
		Description: strings.TrimSpace(r.Description),
		Date:        strings.TrimSpace(r.Date),
		Location:    strings.TrimSpace(r.Location),
		Recipient:   strings.TrimSpace(r.Recipient),
	}
}

// IncomeRequest is the body of POST /api/income
type IncomeRequest struct {
	Amount      *float64 `json:"amount" binding:"required"`
	Source      string   `json:"source" binding:"required,max=100"`
	Description string   `json:"description" binding:"max=255"`
	Date        string   `json:"date" binding:"required"`
}

func (r IncomeRequest) toRecord(id string) records.Income {
	return records.Income{
		ID:          id,
		Amount:      records.NormalizeAmount(*r.Amount),
		Source:      strings.TrimSpace(r.Source),
		Description: strings.TrimSpace(r.Description),
		Date:        strings.TrimSpace(r.Date),
	}
}

// ShareRequest is the body of POST /api/shares
type ShareRequest struct {
	Symbol   string   `json:"symbol" binding:"required,max=20"`
	Type     string   `json:"type" binding:"required"`
	Quantity *float64 `json:"quantity" binding:"required"`
	Price    *float64 `json:"price" binding:"required"`
	Date     string   `json:"date" binding:"required"`
	Notes    string   `json:"notes"`
}

func (r ShareRequest) toRecord(id string) records.ShareTransaction {
	return records.ShareTransaction{
		ID:       id,
		Symbol:   normalizeSymbol(r.Symbol),
		Type:     records.TradeType(strings.ToLower(strings.TrimSpace(r.Type))),
		Quantity: *r.Quantity,
		Price:    *r.Price,
		Date:     strings.TrimSpace(r.Date),
		Notes:    r.Notes,
	}
}

// QuoteRequest is the body of PUT /api/quotes/:symbol
type QuoteRequest struct {
	Price *float64 `json:"price" binding:"required,gt=0"`
}

// Quote is a manually maintained current price.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// SummaryResponse contains totals, breakdowns and monthly cash flow
type SummaryResponse struct {
	Summary             analytics.Summary       `json:"summary"`
	ExpensesByCategory  []analytics.Breakdown   `json:"expensesByCategory"`
	ExpensesByRecipient []analytics.Breakdown   `json:"expensesByRecipient"`
	IncomeBySource      []analytics.Breakdown   `json:"incomeBySource"`
	Monthly             []analytics.MonthlyFlow `json:"monthly"`
}

// normalizeSymbol trims surrounding blanks; symbols stay case-sensitive.
func normalizeSymbol(symbol string) string {
	return strings.TrimSpace(symbol)
}
