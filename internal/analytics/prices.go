package analytics

import "finance-tracker-backend/internal/records"

// PriceSource supplies the current price of a symbol.
type PriceSource interface {
	CurrentPrice(symbol string) (float64, bool)
}

// StaticPrices is a fixed symbol -> price table, e.g. manually entered quotes.
type StaticPrices map[string]float64

func (p StaticPrices) CurrentPrice(symbol string) (float64, bool) {
	price, ok := p[symbol]
	return price, ok
}

// LastTradePrices prices each symbol at its most recent transaction. Among
// transactions on the same date, the later one in the input wins.
func LastTradePrices(shares []records.ShareTransaction) StaticPrices {
	prices := make(StaticPrices)
	latest := make(map[string]string)
	for _, s := range shares {
		if d, ok := latest[s.Symbol]; ok && s.Date < d {
			continue
		}
		latest[s.Symbol] = s.Date
		prices[s.Symbol] = s.Price
	}
	return prices
}

// FallbackPrices asks Primary first and Secondary when Primary has no price.
type FallbackPrices struct {
	Primary   PriceSource
	Secondary PriceSource
}

func (p FallbackPrices) CurrentPrice(symbol string) (float64, bool) {
	if p.Primary != nil {
		if price, ok := p.Primary.CurrentPrice(symbol); ok {
			return price, true
		}
	}
	if p.Secondary != nil {
		return p.Secondary.CurrentPrice(symbol)
	}
	return 0, false
}
