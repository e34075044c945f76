package analytics

import (
	"fmt"
	"math"
)

// Config carries every tunable of the analytics models. The factor weights
// and thresholds are design constants rather than values calibrated from
// data at runtime; exposing them here lets operators tune them without
// touching model logic.
type Config struct {
	// Risk model
	MinHistoryRecords     int     `yaml:"min_history_records"`
	AssumedLifecycleYears float64 `yaml:"assumed_lifecycle_years"`
	AgeFactorCap          float64 `yaml:"age_factor_cap"`
	UnknownAgeFactor      float64 `yaml:"unknown_age_factor"`
	FrequencyFactorCap    float64 `yaml:"frequency_factor_cap"`
	CostTrendFactorCap    float64 `yaml:"cost_trend_factor_cap"`
	// CostTrendSampleSize is the number of newest and oldest costed work
	// orders compared by the cost-trend factor.
	CostTrendSampleSize int     `yaml:"cost_trend_sample_size"`
	SeverityFactorCap   float64 `yaml:"severity_factor_cap"`

	WeightAge       float64 `yaml:"weight_age"`
	WeightFrequency float64 `yaml:"weight_frequency"`
	WeightCostTrend float64 `yaml:"weight_cost_trend"`
	WeightSeverity  float64 `yaml:"weight_severity"`

	// MaxProbability is the ceiling on any reported failure probability;
	// the engine never reports failure as certain.
	MaxProbability        float64 `yaml:"max_probability"`
	HorizonAdjustmentRate float64 `yaml:"horizon_adjustment_rate"`
	SafetyMarginFraction  float64 `yaml:"safety_margin_fraction"`
	AnnualCostInflation   float64 `yaml:"annual_cost_inflation"`
	ReactiveCostMultiplier float64 `yaml:"reactive_cost_multiplier"`

	// Recommender
	PreventiveCostFraction  float64 `yaml:"preventive_cost_fraction"`
	ImmediateInspectionCost float64 `yaml:"immediate_inspection_cost"`
	RoutineCheckupCost      float64 `yaml:"routine_checkup_cost"`
	RoutineCheckupAfterDays int     `yaml:"routine_checkup_after_days"`

	// Forecaster
	SeasonalAmplitude  float64 `yaml:"seasonal_amplitude"`
	BudgetContingency  float64 `yaml:"budget_contingency"`
	HistoryWindowMonths int    `yaml:"history_window_months"`

	// Anomaly detection
	CostAnomalyMinSamples    int     `yaml:"cost_anomaly_min_samples"`
	CostAnomalyThreshold     float64 `yaml:"cost_anomaly_threshold"`
	ZScoreThreshold          float64 `yaml:"z_score_threshold"`
	EnableFrequencyAnomalies bool    `yaml:"enable_frequency_anomalies"`
	EnableDurationAnomalies  bool    `yaml:"enable_duration_anomalies"`
	AnomalyWindowMonths      int     `yaml:"anomaly_window_months"`

	// Schedule optimizer
	InclusionThreshold float64 `yaml:"inclusion_threshold"`
	CriticalThreshold  float64 `yaml:"critical_threshold"`
	MaxConcurrency     int     `yaml:"max_concurrency"`
}

// DefaultConfig returns the reference tuning of the analytics models.
func DefaultConfig() Config {
	return Config{
		MinHistoryRecords:     10,
		AssumedLifecycleYears: 10,
		AgeFactorCap:          0.8,
		UnknownAgeFactor:      0.3,
		FrequencyFactorCap:    0.7,
		CostTrendFactorCap:    0.6,
		CostTrendSampleSize:   3,
		SeverityFactorCap:     0.8,

		WeightAge:       0.25,
		WeightFrequency: 0.30,
		WeightCostTrend: 0.20,
		WeightSeverity:  0.25,

		MaxProbability:         0.95,
		HorizonAdjustmentRate:  0.1,
		SafetyMarginFraction:   0.2,
		AnnualCostInflation:    0.03,
		ReactiveCostMultiplier: 1.5,

		PreventiveCostFraction:  0.7,
		ImmediateInspectionCost: 500,
		RoutineCheckupCost:      150,
		RoutineCheckupAfterDays: 180,

		SeasonalAmplitude:   0.1,
		BudgetContingency:   0.2,
		HistoryWindowMonths: 12,

		CostAnomalyMinSamples:    3,
		CostAnomalyThreshold:     2.5,
		ZScoreThreshold:          3.0,
		EnableFrequencyAnomalies: true,
		EnableDurationAnomalies:  true,
		AnomalyWindowMonths:      6,

		InclusionThreshold: 0.75,
		CriticalThreshold:  0.75,
		MaxConcurrency:     4,
	}
}

// Validate checks internal consistency of the model tuning.
func (c Config) Validate() error {
	if c.MinHistoryRecords < 1 {
		return fmt.Errorf("min_history_records must be at least 1, got %d", c.MinHistoryRecords)
	}
	if c.AssumedLifecycleYears <= 0 {
		return fmt.Errorf("assumed_lifecycle_years must be positive, got %v", c.AssumedLifecycleYears)
	}
	weightSum := c.WeightAge + c.WeightFrequency + c.WeightCostTrend + c.WeightSeverity
	if math.Abs(weightSum-1.0) > 1e-9 {
		return fmt.Errorf("factor weights must sum to 1.0, got %v", weightSum)
	}
	for name, v := range map[string]float64{
		"age_factor_cap":        c.AgeFactorCap,
		"unknown_age_factor":    c.UnknownAgeFactor,
		"frequency_factor_cap":  c.FrequencyFactorCap,
		"cost_trend_factor_cap": c.CostTrendFactorCap,
		"severity_factor_cap":   c.SeverityFactorCap,
		"inclusion_threshold":   c.InclusionThreshold,
		"critical_threshold":    c.CriticalThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
		}
	}
	if c.MaxProbability <= 0 || c.MaxProbability > 1 {
		return fmt.Errorf("max_probability must be within (0, 1], got %v", c.MaxProbability)
	}
	if c.CostTrendSampleSize < 1 {
		return fmt.Errorf("cost_trend_sample_size must be at least 1, got %d", c.CostTrendSampleSize)
	}
	if c.CostAnomalyMinSamples < 1 {
		return fmt.Errorf("cost_anomaly_min_samples must be at least 1, got %d", c.CostAnomalyMinSamples)
	}
	if c.CostAnomalyThreshold <= 1 {
		return fmt.Errorf("cost_anomaly_threshold must be above 1, got %v", c.CostAnomalyThreshold)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.HistoryWindowMonths < 1 || c.AnomalyWindowMonths < 1 {
		return fmt.Errorf("history windows must be at least 1 month")
	}
	return nil
}
