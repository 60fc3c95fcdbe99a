package analytics

import (
	"sort"

	"finance-tracker-backend/internal/records"
)

// HoldingSummary is the open position in one symbol. Ratios that cannot be
// computed (no buys recorded, zero invested value, unknown price) are nil.
type HoldingSummary struct {
	Symbol            string   `json:"symbol"`
	NetQuantity       float64  `json:"netQuantity"`
	AvgBuyPrice       *float64 `json:"avgBuyPrice"`
	CurrentPrice      *float64 `json:"currentPrice"`
	TotalValue        float64  `json:"totalValue"`
	InvestedValue     *float64 `json:"investedValue"`
	ProfitLoss        *float64 `json:"profitLoss"`
	ProfitLossPercent *float64 `json:"profitLossPercent"`
}

// AllocationRecord is a holding's share of the whole portfolio value.
type AllocationRecord struct {
	Symbol     string   `json:"symbol"`
	Value      float64  `json:"value"`
	Percentage *float64 `json:"percentage"`
}

type PortfolioTotals struct {
	TotalPortfolioValue    float64  `json:"totalPortfolioValue"`
	TotalProfitLoss        float64  `json:"totalProfitLoss"`
	TotalProfitLossPercent *float64 `json:"totalProfitLossPercent"`
}

type Portfolio struct {
	Holdings   []HoldingSummary   `json:"holdings"`
	Allocation []AllocationRecord `json:"allocation"`
	Totals     PortfolioTotals    `json:"totals"`
}

type position struct {
	bought  float64
	sold    float64
	buyCost float64
	hasBuys bool
}

// Holdings nets buys against sells per symbol and values what is still held.
// The average buy price is weighted over buy transactions only. Symbols whose
// net quantity is zero or negative are left out. Output is ordered by symbol.
func Holdings(shares []records.ShareTransaction, prices PriceSource) []HoldingSummary {
	bySymbol := make(map[string]*position)
	for _, s := range shares {
		p, ok := bySymbol[s.Symbol]
		if !ok {
			p = &position{}
			bySymbol[s.Symbol] = p
		}
		switch s.Type {
		case records.Buy:
			p.bought += s.Quantity
			p.buyCost += s.Price * s.Quantity
			p.hasBuys = true
		case records.Sell:
			p.sold += s.Quantity
		}
	}

	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	holdings := make([]HoldingSummary, 0, len(symbols))
	for _, symbol := range symbols {
		p := bySymbol[symbol]
		net := p.bought - p.sold
		if net <= 0 {
			continue
		}

		h := HoldingSummary{Symbol: symbol, NetQuantity: net}

		var avg *float64
		if p.hasBuys && p.bought > 0 {
			avg = ratio(p.buyCost, p.bought)
		}
		h.AvgBuyPrice = avg

		if prices != nil {
			if price, ok := prices.CurrentPrice(symbol); ok {
				h.CurrentPrice = &price
				h.TotalValue = net * price
			}
		}

		if avg != nil {
			invested := net * *avg
			h.InvestedValue = &invested
			if h.CurrentPrice != nil {
				pl := h.TotalValue - invested
				h.ProfitLoss = &pl
				h.ProfitLossPercent = percent(pl, invested)
			}
		}
		holdings = append(holdings, h)
	}
	return holdings
}

// Allocation expresses each holding's value as a percentage of the total.
// Percentages are nil when the portfolio is worth nothing.
func Allocation(holdings []HoldingSummary) []AllocationRecord {
	var total float64
	for _, h := range holdings {
		total += h.TotalValue
	}
	out := make([]AllocationRecord, len(holdings))
	for i, h := range holdings {
		out[i] = AllocationRecord{
			Symbol:     h.Symbol,
			Value:      h.TotalValue,
			Percentage: percent(h.TotalValue, total),
		}
	}
	return out
}

// Totals sums portfolio value and profit/loss. Holdings without a known
// profit/loss contribute their value only.
func Totals(holdings []HoldingSummary) PortfolioTotals {
	var t PortfolioTotals
	for _, h := range holdings {
		t.TotalPortfolioValue += h.TotalValue
		if h.ProfitLoss != nil {
			t.TotalProfitLoss += *h.ProfitLoss
		}
	}
	t.TotalProfitLossPercent = percent(t.TotalProfitLoss, t.TotalPortfolioValue-t.TotalProfitLoss)
	return t
}

func Analyze(shares []records.ShareTransaction, prices PriceSource) Portfolio {
	holdings := Holdings(shares, prices)
	return Portfolio{
		Holdings:   holdings,
		Allocation: Allocation(holdings),
		Totals:     Totals(holdings),
	}
}

// ratio returns a/b, or nil when b is zero.
func ratio(a, b float64) *float64 {
	if b == 0 {
		return nil
	}
	v := a / b
	return &v
}

func percent(part, whole float64) *float64 {
	if whole == 0 {
		return nil
	}
	v := part / whole * 100
	return &v
}
