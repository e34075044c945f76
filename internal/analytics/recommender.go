package analytics

import (
	"time"
)

// Recommendation rule thresholds. Rules are independent: every rule whose
// condition holds appends its recommendation.
const (
	immediateInspectionAbove = 0.75
	preventiveAbove          = 0.50
)

// Recommendation type tags.
const (
	RecommendationImmediateInspection = "IMMEDIATE_INSPECTION"
	RecommendationPreventive          = "PREVENTIVE_MAINTENANCE"
	RecommendationRoutineCheckup      = "ROUTINE_CHECKUP"
)

// MaintenanceRecommender derives prioritized recommendations from a risk
// score and history via a fixed rule table.
type MaintenanceRecommender struct {
	cfg Config
	now func() time.Time
}

// NewMaintenanceRecommender creates a recommender with the given tuning.
func NewMaintenanceRecommender(cfg Config, now func() time.Time) *MaintenanceRecommender {
	if now == nil {
		now = time.Now
	}
	return &MaintenanceRecommender{cfg: cfg, now: now}
}

// Recommend returns the recommendations whose rule conditions hold. The
// insufficient-data case produces none.
func (r *MaintenanceRecommender) Recommend(asset *Asset, probability float64, level RiskLevel, reports []MaintenanceRecord) []MaintenanceRecommendation {
	if level == RiskInsufficientData {
		return nil
	}

	var recs []MaintenanceRecommendation

	if probability > immediateInspectionAbove {
		recs = append(recs, MaintenanceRecommendation{
			Type:          RecommendationImmediateInspection,
			Description:   "Failure risk is critical; inspect the asset immediately",
			UrgencyDays:   1,
			EstimatedCost: r.cfg.ImmediateInspectionCost,
		})
	}

	if probability > preventiveAbove {
		recs = append(recs, MaintenanceRecommendation{
			Type:          RecommendationPreventive,
			Description:   "Schedule preventive maintenance to avoid a costlier reactive repair",
			UrgencyDays:   7,
			EstimatedCost: r.cfg.PreventiveCostFraction * estimatedReactiveCost(r.cfg, reports, probability),
		})
	}

	if r.lastMaintainedBefore(asset, reports, r.cfg.RoutineCheckupAfterDays) {
		recs = append(recs, MaintenanceRecommendation{
			Type:          RecommendationRoutineCheckup,
			Description:   "No recent maintenance on record; perform a routine checkup",
			UrgencyDays:   14,
			EstimatedCost: r.cfg.RoutineCheckupCost,
		})
	}

	return recs
}

func (r *MaintenanceRecommender) lastMaintainedBefore(asset *Asset, reports []MaintenanceRecord, days int) bool {
	last := asset.LastMaintainedAt
	if last == nil && len(reports) > 0 {
		last = &reports[0].ReportedAt
	}
	if last == nil {
		return false
	}
	return r.now().Sub(*last) > time.Duration(days)*24*time.Hour
}
