package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// monthlyReports builds n maintenance reports spaced 30 days apart,
// most recent first, starting 15 days before the fixed test clock.
func monthlyReports(n int, priority Priority, cost float64) []MaintenanceRecord {
	reports := make([]MaintenanceRecord, n)
	for i := 0; i < n; i++ {
		reports[i] = MaintenanceRecord{
			ReportedAt: testNow.AddDate(0, 0, -15-30*i),
			Priority:   priority,
			ActualCost: floatPtr(cost),
		}
	}
	return reports
}

// risingWorkOrders builds 2n work orders, most recent first, with the
// newest n at highCost and the oldest n at lowCost.
func risingWorkOrders(n int, highCost, lowCost float64) []WorkOrderRecord {
	orders := make([]WorkOrderRecord, 2*n)
	for i := range orders {
		cost := highCost
		if i >= n {
			cost = lowCost
		}
		orders[i] = WorkOrderRecord{
			ID:          string(rune('a' + i)),
			CompletedAt: testNow.AddDate(0, 0, -10-20*i),
			TotalCost:   floatPtr(cost),
		}
	}
	return orders
}

func TestRiskLevelFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		probability float64
		want        RiskLevel
	}{
		{0.0, RiskLow},
		{0.24, RiskLow},
		{0.25, RiskMedium},
		{0.49, RiskMedium},
		{0.50, RiskHigh},
		{0.74, RiskHigh},
		{0.75, RiskCritical},
		{0.95, RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(tt.probability), "probability %v", tt.probability)
	}
}

func TestPredictInsufficientData(t *testing.T) {
	t.Parallel()

	model := NewFailureRiskModel(DefaultConfig(), fixedNow)
	asset := &Asset{ID: "a1", Name: "Boiler 1"}

	prediction := model.Predict(asset, monthlyReports(5, PriorityLow, 100), nil, 90)

	assert.Equal(t, RiskInsufficientData, prediction.RiskLevel)
	assert.Zero(t, prediction.FailureProbability)
	assert.Empty(t, prediction.Recommendations)
	assert.Nil(t, prediction.PredictedMaintenanceDate)
	assert.Equal(t, "a1", prediction.AssetID)
}

func TestPredictProbabilityBounds(t *testing.T) {
	t.Parallel()

	model := NewFailureRiskModel(DefaultConfig(), fixedNow)
	// Worst plausible asset: past assumed lifecycle, monthly critical
	// reports, sharply rising work-order costs, long horizon.
	asset := &Asset{
		ID:         "a1",
		Name:       "Chiller 3",
		AcquiredAt: timePtr(testNow.AddDate(-20, 0, 0)),
	}
	prediction := model.Predict(asset, monthlyReports(12, PriorityCritical, 500), risingWorkOrders(3, 900, 100), 365)

	assert.GreaterOrEqual(t, prediction.FailureProbability, 0.0)
	assert.LessOrEqual(t, prediction.FailureProbability, 0.95)
	assert.Equal(t, RiskCritical, prediction.RiskLevel)
}

func TestPredictRisingCostScenario(t *testing.T) {
	t.Parallel()

	// A year of monthly reports with increasing severity and rising
	// work-order costs should land in HIGH or CRITICAL with a preventive
	// maintenance recommendation.
	model := NewFailureRiskModel(DefaultConfig(), fixedNow)
	asset := &Asset{
		ID:         "a2",
		Name:       "AHU West",
		AcquiredAt: timePtr(testNow.AddDate(-9, 0, 0)),
	}

	reports := monthlyReports(12, PriorityLow, 200)
	for i := 0; i < 6; i++ {
		reports[i].Priority = PriorityCritical
	}
	orders := risingWorkOrders(3, 400, 100)

	prediction := model.Predict(asset, reports, orders, 90)

	require.Contains(t, []RiskLevel{RiskHigh, RiskCritical}, prediction.RiskLevel)
	types := make([]string, 0, len(prediction.Recommendations))
	for _, r := range prediction.Recommendations {
		types = append(types, r.Type)
	}
	assert.Contains(t, types, RecommendationPreventive)
}

func TestPredictHorizonAdjustment(t *testing.T) {
	t.Parallel()

	model := NewFailureRiskModel(DefaultConfig(), fixedNow)
	asset := &Asset{ID: "a3", Name: "Pump 7", AcquiredAt: timePtr(testNow.AddDate(-5, 0, 0))}
	reports := monthlyReports(12, PriorityHigh, 150)

	short := model.Predict(asset, reports, nil, 30)
	long := model.Predict(asset, reports, nil, 365)

	assert.Greater(t, long.FailureProbability, short.FailureProbability)
}

func TestPredictedMaintenanceDate(t *testing.T) {
	t.Parallel()

	model := NewFailureRiskModel(DefaultConfig(), fixedNow)
	asset := &Asset{ID: "a4", Name: "Elevator A"}

	reports := monthlyReports(12, PriorityLow, 100)
	prediction := model.Predict(asset, reports, nil, 90)

	// Interval between the two most recent reports is 30 days; the 20%
	// safety margin shortens the projection to 24 days.
	require.NotNil(t, prediction.PredictedMaintenanceDate)
	want := reports[0].ReportedAt.AddDate(0, 0, 24)
	assert.WithinDuration(t, want, *prediction.PredictedMaintenanceDate, time.Hour)
}

func TestFactors(t *testing.T) {
	t.Parallel()

	model := NewFailureRiskModel(DefaultConfig(), fixedNow)

	t.Run("age defaults without acquisition date", func(t *testing.T) {
		assert.InDelta(t, 0.3, model.ageFactor(&Asset{}), 1e-9)
	})

	t.Run("age is capped", func(t *testing.T) {
		old := &Asset{AcquiredAt: timePtr(testNow.AddDate(-30, 0, 0))}
		assert.InDelta(t, 0.8, model.ageFactor(old), 1e-9)
	})

	t.Run("frequency counts trailing year", func(t *testing.T) {
		reports := monthlyReports(6, PriorityLow, 0)
		assert.InDelta(t, 0.5, model.frequencyFactor(reports), 1e-9)
	})

	t.Run("frequency is capped", func(t *testing.T) {
		reports := make([]MaintenanceRecord, 20)
		for i := range reports {
			reports[i] = MaintenanceRecord{ReportedAt: testNow.AddDate(0, 0, -i)}
		}
		assert.InDelta(t, 0.7, model.frequencyFactor(reports), 1e-9)
	})

	t.Run("cost trend compares newest and oldest", func(t *testing.T) {
		orders := risingWorkOrders(3, 150, 100)
		assert.InDelta(t, 0.5, model.costTrendFactor(orders), 1e-9)
	})

	t.Run("cost trend is capped and floored", func(t *testing.T) {
		assert.InDelta(t, 0.6, model.costTrendFactor(risingWorkOrders(3, 400, 100)), 1e-9)
		assert.Zero(t, model.costTrendFactor(risingWorkOrders(3, 100, 400)))
	})

	t.Run("cost trend needs both samples", func(t *testing.T) {
		assert.Zero(t, model.costTrendFactor(risingWorkOrders(3, 400, 100)[:4]))
	})

	t.Run("severity counts high and critical quarterly", func(t *testing.T) {
		reports := monthlyReports(12, PriorityLow, 0)
		reports[0].Priority = PriorityHigh
		reports[1].Priority = PriorityCritical
		assert.InDelta(t, 0.5, model.severityFactor(reports), 1e-9)
	})
}

func TestEstimatedReactiveCost(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	reports := monthlyReports(12, PriorityLow, 100)

	// Mean 100, 3% inflation, 1.5x probability premium at p=0.8.
	got := estimatedReactiveCost(cfg, reports, 0.8)
	assert.InDelta(t, 100*1.03*(1+1.5*0.8), got, 1e-9)

	assert.Zero(t, estimatedReactiveCost(cfg, nil, 0.8))
}
