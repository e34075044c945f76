package analytics

import (
	"time"
)

// RiskLevel is a qualitative bucket derived from failure probability.
type RiskLevel string

const (
	RiskInsufficientData RiskLevel = "INSUFFICIENT_DATA"
	RiskLow              RiskLevel = "LOW"
	RiskMedium           RiskLevel = "MEDIUM"
	RiskHigh             RiskLevel = "HIGH"
	RiskCritical         RiskLevel = "CRITICAL"
)

// Risk level thresholds, applied to the probability expressed as a percentage.
const (
	criticalRiskPercent = 75.0
	highRiskPercent     = 50.0
	mediumRiskPercent   = 25.0
)

// RiskLevelFor maps a failure probability to its risk level. The mapping is
// a monotonically non-decreasing step function of the probability.
func RiskLevelFor(probability float64) RiskLevel {
	pct := probability * 100
	switch {
	case pct >= criticalRiskPercent:
		return RiskCritical
	case pct >= highRiskPercent:
		return RiskHigh
	case pct >= mediumRiskPercent:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Priority is the severity tier of a maintenance report.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// IsSevere reports whether the priority counts toward the historical
// severity factor of the risk model.
func (p Priority) IsSevere() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// TrendDirection classifies the monthly cost trend.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "INCREASING"
	TrendDecreasing TrendDirection = "DECREASING"
	TrendStable     TrendDirection = "STABLE"
)

// AnomalyType classifies a detected maintenance anomaly.
type AnomalyType string

const (
	AnomalyCostSpike         AnomalyType = "COST_SPIKE"
	AnomalyFrequencySpike    AnomalyType = "FREQUENCY_SPIKE"
	AnomalyExcessiveDuration AnomalyType = "EXCESSIVE_DURATION"
)

// MaintenanceType tags a scheduled item with the kind of work implied by
// its risk level.
type MaintenanceType string

const (
	MaintenanceEmergency           MaintenanceType = "EMERGENCY"
	MaintenanceUrgentPreventive    MaintenanceType = "URGENT_PREVENTIVE"
	MaintenanceScheduledPreventive MaintenanceType = "SCHEDULED_PREVENTIVE"
	MaintenanceRoutine             MaintenanceType = "ROUTINE"
)

// MaintenanceTypeFor maps a risk level to the maintenance type used when the
// asset is placed on a schedule.
func MaintenanceTypeFor(level RiskLevel) MaintenanceType {
	switch level {
	case RiskCritical:
		return MaintenanceEmergency
	case RiskHigh:
		return MaintenanceUrgentPreventive
	case RiskMedium:
		return MaintenanceScheduledPreventive
	default:
		return MaintenanceRoutine
	}
}

// Asset is a physical, maintainable item. It is owned by the persistence
// layer; the engine only reads it.
type Asset struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	AcquiredAt       *time.Time `json:"acquired_at,omitempty"`
	LastMaintainedAt *time.Time `json:"last_maintained_at,omitempty"`
}

// MaintenanceRecord is one historical maintenance/report event for an asset.
// Gateways return records most-recent-first; several computations rely on
// that ordering.
type MaintenanceRecord struct {
	ReportedAt time.Time `json:"reported_at"`
	Priority   Priority  `json:"priority"`
	ActualCost *float64  `json:"actual_cost,omitempty"`
}

// WorkOrderRecord is one historical work order for an asset or company.
// TotalCost is the summed labor, material and other cost; nil when the
// order was never costed.
type WorkOrderRecord struct {
	ID          string        `json:"id"`
	CompletedAt time.Time     `json:"completed_at"`
	TotalCost   *float64      `json:"total_cost,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// MaintenanceRecommendation is one prioritized action derived from a risk
// score and history.
type MaintenanceRecommendation struct {
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	UrgencyDays   int     `json:"urgency_days"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// FailurePrediction is the per-asset output of the risk model. It is an
// immutable value produced per request and never persisted by the engine.
type FailurePrediction struct {
	AssetID                  string                      `json:"asset_id"`
	AssetName                string                      `json:"asset_name"`
	FailureProbability       float64                     `json:"failure_probability"`
	RiskLevel                RiskLevel                   `json:"risk_level"`
	PredictedMaintenanceDate *time.Time                  `json:"predicted_maintenance_date,omitempty"`
	Recommendations          []MaintenanceRecommendation `json:"recommendations"`
	EstimatedCost            float64                     `json:"estimated_cost"`
}

// TrendAnalysis describes the fitted monthly cost trend.
type TrendAnalysis struct {
	MonthlyGrowthRate  float64        `json:"monthly_growth_rate"`
	TrendDirection     TrendDirection `json:"trend_direction"`
	AverageMonthlyCost float64        `json:"average_monthly_cost"`
}

// MonthlyCost is one month of aggregated cost. Month is formatted as
// "2006-01"; series are ordered ascending by month so iteration order is
// deterministic.
type MonthlyCost struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// BudgetRecommendation is the budget guidance derived from a forecast.
type BudgetRecommendation struct {
	RecommendedBudget float64 `json:"recommended_budget"`
	Alert             string  `json:"alert"`
}

// CostForecast is the company-level cost projection.
type CostForecast struct {
	CompanyID              string               `json:"company_id"`
	HistoricalMonthlyCosts []MonthlyCost        `json:"historical_monthly_costs"`
	ForecastedMonthlyCosts []MonthlyCost        `json:"forecasted_monthly_costs"`
	Trend                  TrendAnalysis        `json:"trend"`
	Budget                 BudgetRecommendation `json:"budget"`
	GeneratedAt            time.Time            `json:"generated_at"`
}

// MaintenanceAnomaly is a maintenance event whose cost, frequency or
// duration deviates far enough from recent behavior to warrant review.
// WorkOrderID is empty for anomaly types that describe a period rather
// than a single order.
type MaintenanceAnomaly struct {
	ID            string      `json:"id"`
	WorkOrderID   string      `json:"work_order_id,omitempty"`
	Type          AnomalyType `json:"type"`
	Description   string      `json:"description"`
	SeverityScore float64     `json:"severity_score"`
	DetectedAt    time.Time   `json:"detected_at"`
}

// ScheduledMaintenanceItem is one asset on a maintenance schedule.
type ScheduledMaintenanceItem struct {
	AssetID            string                      `json:"asset_id"`
	AssetName          string                      `json:"asset_name"`
	ScheduledDate      time.Time                   `json:"scheduled_date"`
	FailureProbability float64                     `json:"failure_probability"`
	EstimatedCost      float64                     `json:"estimated_cost"`
	MaintenanceType    MaintenanceType             `json:"maintenance_type"`
	Recommendations    []MaintenanceRecommendation `json:"recommendations"`
}

// ScheduleMetrics aggregates a schedule.
type ScheduleMetrics struct {
	TotalItems                int     `json:"total_items"`
	TotalEstimatedCost        float64 `json:"total_estimated_cost"`
	AverageFailureProbability float64 `json:"average_failure_probability"`
	CriticalItemCount         int     `json:"critical_item_count"`
}

// MaintenanceSchedule is a ranked, resource-aware maintenance plan for one
// company over a time window.
type MaintenanceSchedule struct {
	ID          string                     `json:"id"`
	CompanyID   string                     `json:"company_id"`
	Items       []ScheduledMaintenanceItem `json:"items"`
	Metrics     ScheduleMetrics            `json:"metrics"`
	WindowStart time.Time                  `json:"window_start"`
	WindowEnd   time.Time                  `json:"window_end"`
}
