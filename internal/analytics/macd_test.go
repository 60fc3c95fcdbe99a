package analytics

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance-tracker-backend/internal/records"
)

func TestEMA(t *testing.T) {
	assert.Equal(t, []float64{}, EMA(nil, 12))
	assert.Equal(t, []float64{0, 0, 25, 32.5, 41.25}, EMA([]float64{10, 20, 30, 40, 50}, 3))

	// not enough history: every value is a placeholder
	assert.Equal(t, []float64{0, 0, 0}, EMA([]float64{5, 6, 7}, 12))

	// period 1 follows the input exactly
	assert.Equal(t, []float64{4, 8, 15}, EMA([]float64{4, 8, 15}, 1))
	assert.Equal(t, []float64{4, 8, 15}, EMA([]float64{4, 8, 15}, 0))
}

func TestMACDSingleDay(t *testing.T) {
	expenses := []records.Expense{{Amount: 100, Date: "2024-01-01"}}
	incomes := []records.Income{{Amount: 150, Date: "2024-01-01"}}

	points := MACD(expenses, incomes)
	require.Len(t, points, 1)
	assert.Equal(t, MACDPoint{Date: "2024-01-01", Income: 150, Expenses: 100}, points[0])
}

func TestMACDEmptyInput(t *testing.T) {
	points := MACD(nil, nil)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestMACDOneSideEmpty(t *testing.T) {
	incomes := []records.Income{
		{Amount: 10, Date: "2024-02-02"},
		{Amount: 5, Date: "2024-02-01"},
		{Amount: 7, Date: "2024-02-02"},
	}
	points := MACD(nil, incomes)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-02-01", points[0].Date)
	assert.Equal(t, 5.0, points[0].Income)
	assert.Equal(t, 0.0, points[0].Expenses)
	assert.Equal(t, "2024-02-02", points[1].Date)
	assert.Equal(t, 17.0, points[1].Income)
}

func TestDailyFlowsSumsSameDate(t *testing.T) {
	expenses := []records.Expense{
		{Amount: 20, Date: "2024-03-05"},
		{Amount: 30, Date: "2024-03-05"},
		{Amount: 4, Date: "2024-03-01"},
	}
	incomes := []records.Income{{Amount: 100, Date: "2024-03-03"}}

	flows := DailyFlows(expenses, incomes)
	assert.Equal(t, []DailyFlowPoint{
		{Date: "2024-03-01", TotalExpense: 4},
		{Date: "2024-03-03", TotalIncome: 100},
		{Date: "2024-03-05", TotalExpense: 50},
	}, flows)
	assert.Equal(t, -50.0, flows[2].Net())
}

func TestMACDWithSmallPeriods(t *testing.T) {
	incomes := []records.Income{
		{Amount: 1, Date: "2024-01-01"},
		{Amount: 2, Date: "2024-01-08"},
		{Amount: 3, Date: "2024-02-01"},
		{Amount: 4, Date: "2024-05-30"},
	}
	points := MACDWith(nil, incomes, MACDConfig{Fast: 2, Slow: 3, Signal: 2})
	require.Len(t, points, 4)

	wantMACD := []float64{0, 1.8333333333333333, 0.11111111111111116, 0.2870370370370372}
	wantSignal := []float64{0, 1.5277777777777777, 0.5833333333333334, 0.38580246913580263}
	for i, p := range points {
		assert.InDelta(t, wantMACD[i], p.MACD, 1e-12, "macd at %d", i)
		assert.InDelta(t, wantSignal[i], p.Signal, 1e-12, "signal at %d", i)
	}
}

func buildSeries(days int) ([]records.Expense, []records.Income) {
	var expenses []records.Expense
	var incomes []records.Income
	for d := 0; d < days; d++ {
		date := fmt.Sprintf("2024-%02d-%02d", 1+d/28, 1+d%28)
		expenses = append(expenses, records.Expense{Amount: float64(10 + (d*7)%23), Date: date})
		if d%3 == 0 {
			incomes = append(incomes, records.Income{Amount: float64(40 + d), Date: date})
		}
	}
	return expenses, incomes
}

func TestMACDProperties(t *testing.T) {
	for _, days := range []int{0, 1, 11, 12, 25, 26, 40, 90} {
		t.Run(fmt.Sprintf("%d days", days), func(t *testing.T) {
			expenses, incomes := buildSeries(days)
			points := MACD(expenses, incomes)

			require.Len(t, points, days)
			assert.True(t, sort.SliceIsSorted(points, func(i, j int) bool { return points[i].Date < points[j].Date }))

			for _, p := range points {
				assert.Equal(t, p.MACD-p.Signal, p.Histogram)
				if days < 12 {
					assert.Equal(t, 0.0, p.MACD)
				}
			}

			again := MACD(expenses, incomes)
			assert.Equal(t, points, again)
		})
	}
}

func TestMACDBeforeSlowPeriodFollowsFastEMA(t *testing.T) {
	expenses, incomes := buildSeries(20)
	points := MACD(expenses, incomes)

	net := make([]float64, 0, len(points))
	for _, p := range points {
		net = append(net, p.Income-p.Expenses)
	}
	fast := EMA(net, 12)
	for i, p := range points {
		assert.Equal(t, fast[i], p.MACD)
	}
	assert.NotEqual(t, 0.0, points[19].MACD)
}
