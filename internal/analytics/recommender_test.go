package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recommendationTypes(recs []MaintenanceRecommendation) []string {
	var types []string
	for _, r := range recs {
		types = append(types, r.Type)
	}
	return types
}

func TestRecommendInsufficientData(t *testing.T) {
	t.Parallel()

	r := NewMaintenanceRecommender(DefaultConfig(), fixedNow)
	recs := r.Recommend(&Asset{ID: "a1"}, 0, RiskInsufficientData, monthlyReports(3, PriorityLow, 100))
	assert.Nil(t, recs)
}

func TestRecommendRules(t *testing.T) {
	t.Parallel()

	recentlyMaintained := timePtr(testNow.AddDate(0, 0, -30))
	staleMaintenance := timePtr(testNow.AddDate(0, -7, 0))

	tests := []struct {
		name        string
		probability float64
		asset       *Asset
		wantTypes   []string
	}{
		{
			name:        "critical risk with stale maintenance triggers all rules",
			probability: 0.80,
			asset:       &Asset{ID: "a1", LastMaintainedAt: staleMaintenance},
			wantTypes: []string{
				RecommendationImmediateInspection,
				RecommendationPreventive,
				RecommendationRoutineCheckup,
			},
		},
		{
			name:        "high risk recently maintained triggers preventive only",
			probability: 0.60,
			asset:       &Asset{ID: "a2", LastMaintainedAt: recentlyMaintained},
			wantTypes:   []string{RecommendationPreventive},
		},
		{
			name:        "low risk recently maintained triggers nothing",
			probability: 0.30,
			asset:       &Asset{ID: "a3", LastMaintainedAt: recentlyMaintained},
			wantTypes:   nil,
		},
		{
			name:        "thresholds are strict",
			probability: 0.75,
			asset:       &Asset{ID: "a4", LastMaintainedAt: recentlyMaintained},
			wantTypes:   []string{RecommendationPreventive},
		},
		{
			name:        "preventive threshold is strict",
			probability: 0.50,
			asset:       &Asset{ID: "a5", LastMaintainedAt: recentlyMaintained},
			wantTypes:   nil,
		},
	}

	r := NewMaintenanceRecommender(DefaultConfig(), fixedNow)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			level := RiskLevelFor(tt.probability)
			recs := r.Recommend(tt.asset, tt.probability, level, monthlyReports(12, PriorityLow, 100))
			assert.Equal(t, tt.wantTypes, recommendationTypes(recs))
		})
	}
}

func TestRecommendPreventiveCost(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	r := NewMaintenanceRecommender(cfg, fixedNow)
	reports := monthlyReports(12, PriorityLow, 200)
	asset := &Asset{ID: "a1", LastMaintainedAt: timePtr(testNow.AddDate(0, 0, -10))}

	recs := r.Recommend(asset, 0.6, RiskHigh, reports)
	require.Len(t, recs, 1)
	want := cfg.PreventiveCostFraction * estimatedReactiveCost(cfg, reports, 0.6)
	assert.InDelta(t, want, recs[0].EstimatedCost, 1e-9)
	assert.Equal(t, 7, recs[0].UrgencyDays)
}

func TestRecommendFallsBackToReportDate(t *testing.T) {
	t.Parallel()

	r := NewMaintenanceRecommender(DefaultConfig(), fixedNow)

	// No LastMaintainedAt: the newest report stands in. A 15-day-old
	// report is within the checkup window; a 200-day-old one is not.
	fresh := monthlyReports(12, PriorityLow, 100)
	recs := r.Recommend(&Asset{ID: "a1"}, 0.3, RiskMedium, fresh)
	assert.Empty(t, recs)

	stale := make([]MaintenanceRecord, len(fresh))
	copy(stale, fresh)
	for i := range stale {
		stale[i].ReportedAt = stale[i].ReportedAt.AddDate(0, 0, -200)
	}
	recs = r.Recommend(&Asset{ID: "a1"}, 0.3, RiskMedium, stale)
	assert.Equal(t, []string{RecommendationRoutineCheckup}, recommendationTypes(recs))
}
