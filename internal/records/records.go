// Package records holds the transaction records the dashboard tracks and the
// validation boundary they cross before any analytics run on them.
package records

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical serialization of a record date.
const DateLayout = "2006-01-02"

// Column limits of the stored records.
const (
	MaxNameLength   = 100
	MaxTextLength   = 255
	MaxSymbolLength = 20
)

var (
	maxAmount   = decimal.New(1, 12) // NUMERIC(14,2)
	maxQuantity = decimal.New(1, 12) // NUMERIC(18,6)
	maxPrice    = decimal.New(1, 10) // NUMERIC(14,4)
)

// TradeType is the direction of a share transaction.
type TradeType string

const (
	Buy  TradeType = "buy"
	Sell TradeType = "sell"
)

// Expense is money spent on a given day.
type Expense struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	Recipient   string  `json:"recipient"`
}

// RecipientOrUnknown returns the recipient, or "Unknown" when none was recorded.
func (e Expense) RecipientOrUnknown() string {
	if strings.TrimSpace(e.Recipient) == "" {
		return "Unknown"
	}
	return e.Recipient
}

func (e *Expense) Validate() error {
	if err := validateAmount(e.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return NewValidationError("category", "category is required")
	}
	for _, f := range []struct {
		field, value string
		max          int
	}{
		{"category", e.Category, MaxNameLength},
		{"description", e.Description, MaxTextLength},
		{"location", e.Location, MaxTextLength},
		{"recipient", e.Recipient, MaxTextLength},
	} {
		if err := validateLength(f.field, f.value, f.max); err != nil {
			return err
		}
	}
	return validateDate(e.Date)
}

// Income is money received on a given day.
type Income struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Source      string  `json:"source"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func (i *Income) Validate() error {
	if err := validateAmount(i.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(i.Source) == "" {
		return NewValidationError("source", "source is required")
	}
	if err := validateLength("source", i.Source, MaxNameLength); err != nil {
		return err
	}
	if err := validateLength("description", i.Description, MaxTextLength); err != nil {
		return err
	}
	return validateDate(i.Date)
}

// ShareTransaction is a single buy or sell of Quantity units of Symbol at Price.
type ShareTransaction struct {
	ID       string    `json:"id"`
	Symbol   string    `json:"symbol"`
	Type     TradeType `json:"type"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Date     string    `json:"date"`
	Notes    string    `json:"notes"`
}

func (s *ShareTransaction) Validate() error {
	if err := ValidateSymbol(s.Symbol); err != nil {
		return err
	}
	if s.Type != Buy && s.Type != Sell {
		return NewValidationError("type", "type must be 'buy' or 'sell'")
	}
	if err := validatePositive("quantity", s.Quantity, 6, maxQuantity); err != nil {
		return err
	}
	if err := ValidatePrice(s.Price); err != nil {
		return err
	}
	return validateDate(s.Date)
}

// Value is the cash amount moved by the transaction.
func (s ShareTransaction) Value() float64 {
	return s.Price * s.Quantity
}

// ValidateSymbol checks a ticker symbol, for trades and quotes alike.
func ValidateSymbol(symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return NewValidationError("symbol", "symbol is required")
	}
	return validateLength("symbol", symbol, MaxSymbolLength)
}

// ValidatePrice checks a per-share price, stored with four decimal places.
func ValidatePrice(price float64) error {
	return validatePositive("price", price, 4, maxPrice)
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return NewValidationError("amount", "amount must be a finite number")
	}
	if amount < 0 {
		return NewValidationError("amount", "amount must not be negative")
	}
	if decimal.NewFromFloat(amount).Round(2).GreaterThanOrEqual(maxAmount) {
		return NewValidationError("amount", fmt.Sprintf("amount must be less than %s", maxAmount))
	}
	return nil
}

// validatePositive checks v is finite, positive once rounded to places
// decimals, and below limit.
func validatePositive(field string, v float64, places int32, limit decimal.Decimal) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return NewValidationError(field, field+" must be greater than zero")
	}
	rounded := decimal.NewFromFloat(v).Round(places)
	if !rounded.IsPositive() {
		return NewValidationError(field, fmt.Sprintf("%s must be at least %s", field, decimal.New(1, -places)))
	}
	if rounded.GreaterThanOrEqual(limit) {
		return NewValidationError(field, fmt.Sprintf("%s must be less than %s", field, limit))
	}
	return nil
}

func validateLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return NewValidationError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

func validateDate(date string) error {
	if _, err := ParseDate(date); err != nil {
		return NewValidationError("date", "date must be YYYY-MM-DD")
	}
	return nil
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeAmount rounds a currency amount to cents.
func NormalizeAmount(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

func ValidateExpenses(expenses []Expense) error {
	errs := &ValidationErrors{}
	for i := range expenses {
		if err := expenses[i].Validate(); err != nil {
			errs.Add(NewIndexedValidationError(i+1, err))
		}
	}
	return errs.orNil()
}

func ValidateIncomes(incomes []Income) error {
	errs := &ValidationErrors{}
	for i := range incomes {
		if err := incomes[i].Validate(); err != nil {
			errs.Add(NewIndexedValidationError(i+1, err))
		}
	}
	return errs.orNil()
}

func ValidateShares(shares []ShareTransaction) error {
	errs := &ValidationErrors{}
	for i := range shares {
		if err := shares[i].Validate(); err != nil {
			errs.Add(NewIndexedValidationError(i+1, err))
		}
	}
	return errs.orNil()
}
