package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecastMonths(t *testing.T) {
	t.Parallel()

	f := NewCostForecaster(DefaultConfig(), fixedNow)
	trend := TrendAnalysis{TrendDirection: TrendStable, AverageMonthlyCost: 1000}

	series := f.Forecast(trend, 6)
	require.Len(t, series, 6)

	// Consecutive calendar months starting with the month after the clock.
	want := []string{"2026-02", "2026-03", "2026-04", "2026-05", "2026-06", "2026-07"}
	for i, m := range series {
		assert.Equal(t, want[i], m.Month)
	}
}

func TestForecastWrapsYearBoundary(t *testing.T) {
	t.Parallel()

	november := func() time.Time { return time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC) }
	f := NewCostForecaster(DefaultConfig(), november)

	series := f.Forecast(TrendAnalysis{AverageMonthlyCost: 500}, 3)
	require.Len(t, series, 3)
	assert.Equal(t, "2025-12", series[0].Month)
	assert.Equal(t, "2026-01", series[1].Month)
	assert.Equal(t, "2026-02", series[2].Month)
}

func TestForecastAmounts(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	f := NewCostForecaster(cfg, fixedNow)

	seasonal := func(month time.Month) float64 {
		return 1 + cfg.SeasonalAmplitude*math.Sin(float64(int(month)-1)*math.Pi/6)
	}

	t.Run("flat trend applies only the seasonal factor", func(t *testing.T) {
		series := f.Forecast(TrendAnalysis{AverageMonthlyCost: 1000}, 2)
		require.Len(t, series, 2)
		assert.InDelta(t, 1000*seasonal(time.February), series[0].Amount, 1e-6)
		assert.InDelta(t, 1000*seasonal(time.March), series[1].Amount, 1e-6)
	})

	t.Run("growth compounds per month", func(t *testing.T) {
		trend := TrendAnalysis{AverageMonthlyCost: 1000, MonthlyGrowthRate: 0.1}
		series := f.Forecast(trend, 2)
		require.Len(t, series, 2)
		assert.InDelta(t, 1000*1.1*seasonal(time.February), series[0].Amount, 1e-6)
		assert.InDelta(t, 1000*1.1*1.1*seasonal(time.March), series[1].Amount, 1e-6)
	})
}

func TestBudgetRecommendation(t *testing.T) {
	t.Parallel()

	f := NewCostForecaster(DefaultConfig(), fixedNow)
	forecast := []MonthlyCost{
		{Month: "2026-02", Amount: 1000},
		{Month: "2026-03", Amount: 1500},
	}

	tests := []struct {
		direction TrendDirection
		wantAlert string
	}{
		{TrendIncreasing, alertIncreasing},
		{TrendDecreasing, alertDecreasing},
		{TrendStable, alertStable},
	}
	for _, tt := range tests {
		budget := f.BudgetRecommendation(forecast, TrendAnalysis{TrendDirection: tt.direction})
		assert.InDelta(t, 2500*1.2, budget.RecommendedBudget, 1e-9)
		assert.Equal(t, tt.wantAlert, budget.Alert)
	}
}
