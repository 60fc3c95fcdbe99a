package analytics

import (
	"math/rand"
	"time"

	"finance-tracker-backend/internal/records"
)

// HistoricalPricePoint is one day of a symbol's synthetic price series.
type HistoricalPricePoint struct {
	Date   string  `json:"date"`
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// PriceHistory fabricates a days+1 long daily series ending at end for every
// symbol with a known current price. Each day starts from a base of 70-90% of
// the current price, drifts toward the current price as the series approaches
// end, and moves by a random +/-3%. The series is illustrative only; the same
// rnd state yields the same output.
func PriceHistory(symbols []string, prices PriceSource, end time.Time, days int, rnd *rand.Rand) []HistoricalPricePoint {
	if days < 0 {
		days = 0
	}
	out := make([]HistoricalPricePoint, 0, len(symbols)*(days+1))
	if prices == nil {
		return out
	}
	for _, symbol := range symbols {
		current, ok := prices.CurrentPrice(symbol)
		if !ok {
			continue
		}
		for i := days; i >= 0; i-- {
			date := end.AddDate(0, 0, -i)

			dailyChange := 1 + (rnd.Float64()*0.06 - 0.03)
			base := current * (0.7 + rnd.Float64()*0.2)

			progress := 0.0
			if days > 0 {
				progress = float64(i) / float64(days)
			}

			price := current * dailyChange
			if base != 0 {
				price = base * (1 + (1-progress)*(current/base-1)) * dailyChange
			}
			out = append(out, HistoricalPricePoint{
				Date:   records.FormatDate(date),
				Symbol: symbol,
				Price:  price,
			})
		}
	}
	return out
}

// Symbols returns the distinct symbols of shares in first-seen order.
func Symbols(shares []records.ShareTransaction) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, s := range shares {
		if !seen[s.Symbol] {
			seen[s.Symbol] = true
			out = append(out, s.Symbol)
		}
	}
	return out
}
