package analytics

import (
	"time"
)

// FailureRiskModel computes a failure probability for one asset from its
// maintenance and work-order history. It combines four independently
// capped factors through fixed weights; it is a pure function of its
// inputs and the injected clock.
type FailureRiskModel struct {
	cfg         Config
	recommender *MaintenanceRecommender
	now         func() time.Time
}

// NewFailureRiskModel creates a risk model with the given tuning.
func NewFailureRiskModel(cfg Config, now func() time.Time) *FailureRiskModel {
	if now == nil {
		now = time.Now
	}
	return &FailureRiskModel{
		cfg:         cfg,
		recommender: NewMaintenanceRecommender(cfg, now),
		now:         now,
	}
}

// Predict scores the asset's failure risk over the horizon. Below the
// minimum history threshold it returns a low-confidence prediction with
// probability zero instead of failing.
func (m *FailureRiskModel) Predict(asset *Asset, reports []MaintenanceRecord, orders []WorkOrderRecord, horizonDays int) *FailurePrediction {
	if len(reports) < m.cfg.MinHistoryRecords {
		return &FailurePrediction{
			AssetID:            asset.ID,
			AssetName:          asset.Name,
			FailureProbability: 0,
			RiskLevel:          RiskInsufficientData,
		}
	}

	probability := m.cfg.WeightAge*m.ageFactor(asset) +
		m.cfg.WeightFrequency*m.frequencyFactor(reports) +
		m.cfg.WeightCostTrend*m.costTrendFactor(orders) +
		m.cfg.WeightSeverity*m.severityFactor(reports)

	// Longer horizons leave more room for failure.
	probability *= 1 + float64(horizonDays)/365*m.cfg.HorizonAdjustmentRate
	probability = clamp(probability, 0, m.cfg.MaxProbability)

	level := RiskLevelFor(probability)

	return &FailurePrediction{
		AssetID:                  asset.ID,
		AssetName:                asset.Name,
		FailureProbability:       probability,
		RiskLevel:                level,
		PredictedMaintenanceDate: m.predictedMaintenanceDate(reports),
		Recommendations:          m.recommender.Recommend(asset, probability, level, reports),
		EstimatedCost:            estimatedReactiveCost(m.cfg, reports, probability),
	}
}

// ageFactor normalizes asset age against the assumed lifecycle.
func (m *FailureRiskModel) ageFactor(asset *Asset) float64 {
	if asset.AcquiredAt == nil {
		return m.cfg.UnknownAgeFactor
	}
	ageDays := m.now().Sub(*asset.AcquiredAt).Hours() / 24
	factor := ageDays / (m.cfg.AssumedLifecycleYears * 365)
	return clamp(factor, 0, m.cfg.AgeFactorCap)
}

// frequencyFactor normalizes the trailing-year maintenance count against a
// monthly cadence.
func (m *FailureRiskModel) frequencyFactor(reports []MaintenanceRecord) float64 {
	cutoff := m.now().AddDate(-1, 0, 0)
	count := 0
	for _, r := range reports {
		if r.ReportedAt.After(cutoff) {
			count++
		}
	}
	return clamp(float64(count)/12, 0, m.cfg.FrequencyFactorCap)
}

// costTrendFactor compares the mean cost of the newest and oldest costed
// work orders. With fewer than two full samples the trend is unknown and
// contributes nothing.
func (m *FailureRiskModel) costTrendFactor(orders []WorkOrderRecord) float64 {
	var costs []float64
	for _, o := range orders {
		if o.TotalCost != nil {
			costs = append(costs, *o.TotalCost)
		}
	}
	n := m.cfg.CostTrendSampleSize
	if len(costs) < 2*n {
		return 0
	}
	// Orders arrive most-recent-first.
	recent := mean(costs[:n])
	oldest := mean(costs[len(costs)-n:])
	if oldest <= 0 {
		return 0
	}
	return clamp((recent-oldest)/oldest, 0, m.cfg.CostTrendFactorCap)
}

// severityFactor normalizes the trailing-year count of high and critical
// reports against a quarterly cadence.
func (m *FailureRiskModel) severityFactor(reports []MaintenanceRecord) float64 {
	cutoff := m.now().AddDate(-1, 0, 0)
	count := 0
	for _, r := range reports {
		if r.Priority.IsSevere() && r.ReportedAt.After(cutoff) {
			count++
		}
	}
	return clamp(float64(count)/4, 0, m.cfg.SeverityFactorCap)
}

// predictedMaintenanceDate projects the interval between the two most
// recent reports forward from the latest one, shortened by the safety
// margin.
func (m *FailureRiskModel) predictedMaintenanceDate(reports []MaintenanceRecord) *time.Time {
	if len(reports) < 2 {
		return nil
	}
	latest := reports[0].ReportedAt
	interval := latest.Sub(reports[1].ReportedAt)
	if interval <= 0 {
		return nil
	}
	shortened := time.Duration(float64(interval) * (1 - m.cfg.SafetyMarginFraction))
	predicted := latest.Add(shortened)
	return &predicted
}

// estimatedReactiveCost is the mean historical maintenance cost, inflated
// by the annual rate and scaled up with the failure probability to reflect
// the premium on reactive repair. Shared by the risk model and the
// recommender.
func estimatedReactiveCost(cfg Config, reports []MaintenanceRecord, probability float64) float64 {
	var costs []float64
	for _, r := range reports {
		if r.ActualCost != nil {
			costs = append(costs, *r.ActualCost)
		}
	}
	if len(costs) == 0 {
		return 0
	}
	base := mean(costs) * (1 + cfg.AnnualCostInflation)
	return base * (1 + cfg.ReactiveCostMultiplier*probability)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
