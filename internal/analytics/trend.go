package analytics

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Slope thresholds separating the trend directions.
const (
	increasingSlope = 0.1
	decreasingSlope = -0.1
)

const monthKeyLayout = "2006-01"

// CostTrendAnalyzer buckets work-order costs into calendar months and fits
// an ordinary least-squares line over the sequential monthly totals.
type CostTrendAnalyzer struct{}

// NewCostTrendAnalyzer creates a trend analyzer.
func NewCostTrendAnalyzer() *CostTrendAnalyzer {
	return &CostTrendAnalyzer{}
}

// Analyze fits the monthly cost trend. With fewer than two monthly buckets
// there is nothing to fit and the result is a neutral stable trend with
// zero growth.
func (a *CostTrendAnalyzer) Analyze(orders []WorkOrderRecord) TrendAnalysis {
	buckets := MonthlyCostSeries(orders)

	totals := make([]float64, len(buckets))
	for i, b := range buckets {
		totals[i] = b.Amount
	}
	avg := 0.0
	if len(totals) > 0 {
		avg = stat.Mean(totals, nil)
	}

	if len(buckets) < 2 {
		return TrendAnalysis{
			MonthlyGrowthRate:  0,
			TrendDirection:     TrendStable,
			AverageMonthlyCost: avg,
		}
	}

	xs := make([]float64, len(totals))
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	_, slope := stat.LinearRegression(xs, totals, nil, false)

	growth := 0.0
	if avg != 0 {
		growth = slope / avg
	}

	direction := TrendStable
	switch {
	case slope > increasingSlope:
		direction = TrendIncreasing
	case slope < decreasingSlope:
		direction = TrendDecreasing
	}

	return TrendAnalysis{
		MonthlyGrowthRate:  growth,
		TrendDirection:     direction,
		AverageMonthlyCost: avg,
	}
}

// MonthlyCostSeries sums costed work orders into calendar-month buckets,
// ordered ascending by month. Uncosted orders are skipped.
func MonthlyCostSeries(orders []WorkOrderRecord) []MonthlyCost {
	sums := make(map[string]float64)
	for _, o := range orders {
		if o.TotalCost == nil {
			continue
		}
		sums[o.CompletedAt.Format(monthKeyLayout)] += *o.TotalCost
	}

	months := make([]string, 0, len(sums))
	for m := range sums {
		months = append(months, m)
	}
	sort.Strings(months)

	series := make([]MonthlyCost, len(months))
	for i, m := range months {
		series[i] = MonthlyCost{Month: m, Amount: sums[m]}
	}
	return series
}
