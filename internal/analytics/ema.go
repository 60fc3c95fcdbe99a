package analytics

// EMA returns the exponential moving average of values over period.
//
// The average is seeded with sum(values[:period])/period. Indices before
// period-1 have too little history and hold 0 placeholders; from period-1 on
// each value is values[i]*k + previous*(1-k) with k = 2/(period+1). The seed
// always divides by period, even when fewer values exist.
func EMA(values []float64, period int) []float64 {
	if period < 1 {
		period = 1
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	k := 2 / float64(period+1)

	var seed float64
	for i := 0; i < period && i < len(values); i++ {
		seed += values[i]
	}
	ema := seed / float64(period)

	for i, v := range values {
		if i < period-1 {
			continue
		}
		ema = v*k + ema*(1-k)
		out[i] = ema
	}
	return out
}
