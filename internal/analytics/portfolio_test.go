package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker-backend/internal/records"
)

func TestHoldingsBuyThenPartialSell(t *testing.T) {
	shares := []records.ShareTransaction{
		{Symbol: "X", Type: records.Buy, Quantity: 10, Price: 100, Date: "2024-01-01"},
		{Symbol: "X", Type: records.Sell, Quantity: 4, Price: 120, Date: "2024-01-02"},
	}
	holdings := Holdings(shares, StaticPrices{"X": 110})
	require.Len(t, holdings, 1)

	h := holdings[0]
	assert.Equal(t, "X", h.Symbol)
	assert.Equal(t, 6.0, h.NetQuantity)
	require.NotNil(t, h.AvgBuyPrice)
	assert.Equal(t, 100.0, *h.AvgBuyPrice)
	require.NotNil(t, h.CurrentPrice)
	assert.Equal(t, 110.0, *h.CurrentPrice)
	assert.Equal(t, 660.0, h.TotalValue)
	require.NotNil(t, h.InvestedValue)
	assert.Equal(t, 600.0, *h.InvestedValue)
	require.NotNil(t, h.ProfitLoss)
	assert.InDelta(t, 60.0, *h.ProfitLoss, 1e-9)
	require.NotNil(t, h.ProfitLossPercent)
	assert.InDelta(t, 10.0, *h.ProfitLossPercent, 1e-9)
}

func TestHoldingsWeightedAverageIgnoresSells(t *testing.T) {
	shares := []records.ShareTransaction{
		{Symbol: "ACME", Type: records.Buy, Quantity: 10, Price: 10, Date: "2024-01-01"},
		{Symbol: "ACME", Type: records.Buy, Quantity: 30, Price: 20, Date: "2024-01-05"},
		{Symbol: "ACME", Type: records.Sell, Quantity: 5, Price: 999, Date: "2024-01-06"},
	}
	holdings := Holdings(shares, StaticPrices{"ACME": 20})
	require.Len(t, holdings, 1)
	assert.Equal(t, 17.5, *holdings[0].AvgBuyPrice)
	assert.Equal(t, 35.0, holdings[0].NetQuantity)
}

func TestHoldingsExcludesClosedAndOversoldPositions(t *testing.T) {
	shares := []records.ShareTransaction{
		{Symbol: "CLOSED", Type: records.Buy, Quantity: 5, Price: 10, Date: "2024-01-01"},
		{Symbol: "CLOSED", Type: records.Sell, Quantity: 5, Price: 12, Date: "2024-01-02"},
		{Symbol: "SHORT", Type: records.Sell, Quantity: 3, Price: 12, Date: "2024-01-02"},
		{Symbol: "OPEN", Type: records.Buy, Quantity: 1, Price: 50, Date: "2024-01-03"},
	}
	prices := StaticPrices{"CLOSED": 11, "SHORT": 12, "OPEN": 55}

	portfolio := Analyze(shares, prices)
	require.Len(t, portfolio.Holdings, 1)
	assert.Equal(t, "OPEN", portfolio.Holdings[0].Symbol)
	require.Len(t, portfolio.Allocation, 1)
	assert.Equal(t, "OPEN", portfolio.Allocation[0].Symbol)
}

func TestHoldingsWithoutPrice(t *testing.T) {
	shares := []records.ShareTransaction{
		{Symbol: "NOPRICE", Type: records.Buy, Quantity: 2, Price: 10, Date: "2024-01-01"},
	}
	holdings := Holdings(shares, StaticPrices{})
	require.Len(t, holdings, 1)
	assert.Nil(t, holdings[0].CurrentPrice)
	assert.Nil(t, holdings[0].ProfitLoss)
	assert.Nil(t, holdings[0].ProfitLossPercent)
	assert.Equal(t, 0.0, holdings[0].TotalValue)

	allocation := Allocation(holdings)
	require.Len(t, allocation, 1)
	assert.Nil(t, allocation[0].Percentage)
}

func TestAllocationSumsToHundred(t *testing.T) {
	shares := []records.ShareTransaction{
		{Symbol: "A", Type: records.Buy, Quantity: 3, Price: 10, Date: "2024-01-01"},
		{Symbol: "B", Type: records.Buy, Quantity: 7, Price: 13.37, Date: "2024-01-01"},
		{Symbol: "C", Type: records.Buy, Quantity: 1, Price: 250, Date: "2024-01-02"},
		{Symbol: "C", Type: records.Sell, Quantity: 0.5, Price: 260, Date: "2024-01-03"},
	}
	portfolio := Analyze(shares, StaticPrices{"A": 12.5, "B": 11.1, "C": 301})

	var sum float64
	for _, a := range portfolio.Allocation {
		require.NotNil(t, a.Percentage)
		sum += *a.Percentage
	}
	assert.InDelta(t, 100, sum, 1e-9)

	symbols := []string{}
	for _, h := range portfolio.Holdings {
		symbols = append(symbols, h.Symbol)
	}
	assert.Equal(t, []string{"A", "B", "C"}, symbols)
}

func TestTotals(t *testing.T) {
	shares := []records.ShareTransaction{
		{Symbol: "A", Type: records.Buy, Quantity: 10, Price: 10, Date: "2024-01-01"},
		{Symbol: "B", Type: records.Buy, Quantity: 10, Price: 20, Date: "2024-01-01"},
	}
	totals := Analyze(shares, StaticPrices{"A": 15, "B": 15}).Totals

	assert.Equal(t, 300.0, totals.TotalPortfolioValue)
	assert.Equal(t, 0.0, totals.TotalProfitLoss)
	require.NotNil(t, totals.TotalProfitLossPercent)
	assert.Equal(t, 0.0, *totals.TotalProfitLossPercent)

	empty := Totals(nil)
	assert.Equal(t, 0.0, empty.TotalPortfolioValue)
	assert.Nil(t, empty.TotalProfitLossPercent)
}

func TestLastTradePrices(t *testing.T) {
	shares := []records.ShareTransaction{
		{Symbol: "X", Price: 10, Date: "2024-01-03"},
		{Symbol: "X", Price: 12, Date: "2024-01-01"},
		{Symbol: "X", Price: 11, Date: "2024-01-03"},
		{Symbol: "Y", Price: 5, Date: "2024-01-01"},
	}
	prices := LastTradePrices(shares)
	assert.Equal(t, StaticPrices{"X": 11, "Y": 5}, prices)

	fallback := FallbackPrices{Primary: StaticPrices{"Y": 6}, Secondary: prices}
	p, ok := fallback.CurrentPrice("Y")
	assert.True(t, ok)
	assert.Equal(t, 6.0, p)
	p, ok = fallback.CurrentPrice("X")
	assert.True(t, ok)
	assert.Equal(t, 11.0, p)
	_, ok = fallback.CurrentPrice("Z")
	assert.False(t, ok)
}

func TestPriceHistory(t *testing.T) {
	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	prices := StaticPrices{"A": 100, "B": 20}

	history := PriceHistory([]string{"A", "B", "UNPRICED"}, prices, end, 30, rand.New(rand.NewSource(1)))
	require.Len(t, history, 62)

	assert.Equal(t, "2024-03-01", history[0].Date)
	assert.Equal(t, "A", history[0].Symbol)
	last := history[30]
	assert.Equal(t, "2024-03-31", last.Date)
	assert.InDelta(t, 100, last.Price, 3.0000001)
	assert.Equal(t, "B", history[31].Symbol)

	for _, p := range history {
		assert.Greater(t, p.Price, 0.0)
	}

	again := PriceHistory([]string{"A", "B", "UNPRICED"}, prices, end, 30, rand.New(rand.NewSource(1)))
	assert.Equal(t, history, again)
}

func TestSymbols(t *testing.T) {
	shares := []records.ShareTransaction{{Symbol: "B"}, {Symbol: "A"}, {Symbol: "B"}}
	assert.Equal(t, []string{"B", "A"}, Symbols(shares))
}
