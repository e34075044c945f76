package analytics

import (
	"math"
	"time"
)

// Budget alert messages keyed off the trend direction.
const (
	alertIncreasing = "Maintenance costs are trending upward; consider raising the maintenance budget allocation"
	alertDecreasing = "Maintenance costs are trending downward; surplus budget can be reallocated"
	alertStable     = "Maintenance costs are stable; maintain the current budget with standard contingency"
)

// CostForecaster projects a fitted trend forward with compound growth and
// a sinusoidal seasonal adjustment.
type CostForecaster struct {
	cfg Config
	now func() time.Time
}

// NewCostForecaster creates a forecaster with the given tuning.
func NewCostForecaster(cfg Config, now func() time.Time) *CostForecaster {
	if now == nil {
		now = time.Now
	}
	return &CostForecaster{cfg: cfg, now: now}
}

// Forecast projects the next `months` calendar months starting with the
// month after the current one. Month i carries compound growth (1+g)^(i+1)
// and a seasonal multiplier derived from its calendar month.
func (f *CostForecaster) Forecast(trend TrendAnalysis, months int) []MonthlyCost {
	now := f.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	series := make([]MonthlyCost, 0, months)
	for i := 0; i < months; i++ {
		month := first.AddDate(0, i, 0)
		base := trend.AverageMonthlyCost * math.Pow(1+trend.MonthlyGrowthRate, float64(i+1))
		seasonal := 1 + f.cfg.SeasonalAmplitude*math.Sin(float64(int(month.Month())-1)*math.Pi/6)
		series = append(series, MonthlyCost{
			Month:  month.Format(monthKeyLayout),
			Amount: base * seasonal,
		})
	}
	return series
}

// BudgetRecommendation sums the forecast, adds the contingency margin and
// attaches the qualitative alert for the trend direction.
func (f *CostForecaster) BudgetRecommendation(forecast []MonthlyCost, trend TrendAnalysis) BudgetRecommendation {
	total := 0.0
	for _, m := range forecast {
		total += m.Amount
	}

	alert := alertStable
	switch trend.TrendDirection {
	case TrendIncreasing:
		alert = alertIncreasing
	case TrendDecreasing:
		alert = alertDecreasing
	}

	return BudgetRecommendation{
		RecommendedBudget: total * (1 + f.cfg.BudgetContingency),
		Alert:             alert,
	}
}
