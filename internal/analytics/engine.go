package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/maintwise/maintwise/internal/cache"
	"github.com/maintwise/maintwise/internal/monitoring"
)

// Operation names used for cache keys and metrics labels.
const (
	opPredict   = "predict_asset_failure"
	opForecast  = "forecast_maintenance_costs"
	opAnomalies = "detect_maintenance_anomalies"
	opSchedule  = "generate_optimal_schedule"
)

// Engine is the facade over the analytics models. Every entry point is
// safe for concurrent use; computations for distinct keys run
// independently and share nothing but the cache.
type Engine struct {
	logger  *zap.Logger
	cfg     Config
	gateway HistoryGateway
	cache   *cache.PredictionCache
	metrics *monitoring.Metrics

	model      *FailureRiskModel
	analyzer   *CostTrendAnalyzer
	forecaster *CostForecaster
	detector   *AnomalyDetector
	optimizer  *ScheduleOptimizer

	now func() time.Time
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithClock replaces the engine's clock; used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine wires the analytics models behind one facade. The prediction
// cache and metrics exporter are optional; with a nil cache every call
// recomputes.
func NewEngine(logger *zap.Logger, cfg Config, gateway HistoryGateway, predictionCache *cache.PredictionCache, metrics *monitoring.Metrics, opts ...Option) *Engine {
	e := &Engine{
		logger:  logger,
		cfg:     cfg,
		gateway: gateway,
		cache:   predictionCache,
		metrics: metrics,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.model = NewFailureRiskModel(cfg, e.now)
	e.analyzer = NewCostTrendAnalyzer()
	e.forecaster = NewCostForecaster(cfg, e.now)
	e.detector = NewAnomalyDetector(cfg, e.now)
	e.optimizer = NewScheduleOptimizer(logger, cfg, gateway, e.model, e.now)
	return e
}

// PredictAssetFailure computes (or returns the cached) failure prediction
// for one asset over the horizon.
func (e *Engine) PredictAssetFailure(ctx context.Context, assetID string, horizonDays int) (*FailurePrediction, error) {
	if assetID == "" {
		return nil, fmt.Errorf("%w: asset id is required", ErrInvalidInput)
	}
	if horizonDays < 1 {
		return nil, fmt.Errorf("%w: horizon must be at least 1 day, got %d", ErrInvalidInput, horizonDays)
	}

	key := fmt.Sprintf("%s:%s:%d", opPredict, assetID, horizonDays)
	var prediction FailurePrediction
	if err := e.runCached(ctx, opPredict, key, &prediction, func(cctx context.Context) (any, error) {
		return e.computePrediction(cctx, assetID, horizonDays)
	}); err != nil {
		return nil, err
	}
	return &prediction, nil
}

// ForecastMaintenanceCosts projects the company's monthly maintenance
// costs forward.
func (e *Engine) ForecastMaintenanceCosts(ctx context.Context, companyID string, months int) (*CostForecast, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrInvalidInput)
	}
	if months < 1 {
		return nil, fmt.Errorf("%w: forecast months must be at least 1, got %d", ErrInvalidInput, months)
	}

	key := fmt.Sprintf("%s:%s:%d", opForecast, companyID, months)
	var forecast CostForecast
	if err := e.runCached(ctx, opForecast, key, &forecast, func(cctx context.Context) (any, error) {
		return e.computeForecast(cctx, companyID, months)
	}); err != nil {
		return nil, err
	}
	return &forecast, nil
}

// DetectMaintenanceAnomalies flags the company's recent anomalous work
// orders, sorted descending by severity.
func (e *Engine) DetectMaintenanceAnomalies(ctx context.Context, companyID string) ([]MaintenanceAnomaly, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrInvalidInput)
	}

	key := fmt.Sprintf("%s:%s", opAnomalies, companyID)
	var anomalies []MaintenanceAnomaly
	if err := e.runCached(ctx, opAnomalies, key, &anomalies, func(cctx context.Context) (any, error) {
		return e.computeAnomalies(cctx, companyID)
	}); err != nil {
		return nil, err
	}
	return anomalies, nil
}

// GenerateOptimalSchedule builds the ranked maintenance schedule for the
// company over the horizon.
func (e *Engine) GenerateOptimalSchedule(ctx context.Context, companyID string, horizonDays int) (*MaintenanceSchedule, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: company id is required", ErrInvalidInput)
	}
	if horizonDays < 1 {
		return nil, fmt.Errorf("%w: horizon must be at least 1 day, got %d", ErrInvalidInput, horizonDays)
	}

	key := fmt.Sprintf("%s:%s:%d", opSchedule, companyID, horizonDays)
	var schedule MaintenanceSchedule
	if err := e.runCached(ctx, opSchedule, key, &schedule, func(cctx context.Context) (any, error) {
		return e.computeSchedule(cctx, companyID, horizonDays)
	}); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// CacheStats returns the prediction cache counters.
func (e *Engine) CacheStats() cache.Stats {
	if e.cache == nil {
		return cache.Stats{}
	}
	return e.cache.Stats()
}

// runCached routes a computation through the prediction cache, serializing
// results for storage and instrumenting the computation itself. The
// computation runs detached from the caller's cancellation so concurrent
// callers sharing it are not failed by one caller leaving.
func (e *Engine) runCached(ctx context.Context, operation, key string, out any, compute func(context.Context) (any, error)) error {
	cctx := context.WithoutCancel(ctx)
	fn := func() ([]byte, error) {
		start := time.Now()
		result, err := compute(cctx)
		if e.metrics != nil {
			e.metrics.ObserveComputation(operation, time.Since(start), err)
		}
		if err != nil {
			e.logger.Warn("computation failed",
				zap.String("operation", operation),
				zap.String("key", key),
				zap.Error(err),
			)
			return nil, err
		}
		return json.Marshal(result)
	}

	if e.cache == nil {
		payload, err := fn()
		if err != nil {
			return err
		}
		return json.Unmarshal(payload, out)
	}

	payload, hit, err := e.cache.GetOrCompute(ctx, key, fn)
	if e.metrics != nil {
		if hit {
			e.metrics.CacheHit()
		} else if err == nil {
			e.metrics.CacheMiss()
		}
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func (e *Engine) computePrediction(ctx context.Context, assetID string, horizonDays int) (*FailurePrediction, error) {
	asset, err := e.gateway.FindAsset(ctx, assetID)
	if err != nil {
		return nil, e.wrapGateway("asset lookup", err)
	}
	reports, err := e.gateway.AssetMaintenanceReports(ctx, assetID)
	if err != nil {
		return nil, e.wrapGateway("maintenance reports", err)
	}
	orders, err := e.gateway.AssetWorkOrderHistory(ctx, assetID)
	if err != nil {
		return nil, e.wrapGateway("work order history", err)
	}

	var prediction *FailurePrediction
	if err := e.safely(opPredict, func() {
		prediction = e.model.Predict(asset, reports, orders, horizonDays)
	}); err != nil {
		return nil, err
	}

	e.logger.Debug("asset failure predicted",
		zap.String("asset_id", assetID),
		zap.Int("horizon_days", horizonDays),
		zap.Float64("probability", prediction.FailureProbability),
		zap.String("risk_level", string(prediction.RiskLevel)),
	)
	return prediction, nil
}

func (e *Engine) computeForecast(ctx context.Context, companyID string, months int) (*CostForecast, error) {
	to := e.now()
	from := to.AddDate(0, -e.cfg.HistoryWindowMonths, 0)
	orders, err := e.gateway.WorkOrdersByCompanyAndDateRange(ctx, companyID, from, to)
	if err != nil {
		return nil, e.wrapGateway("company work orders", err)
	}

	var forecast *CostForecast
	if err := e.safely(opForecast, func() {
		trend := e.analyzer.Analyze(orders)
		projected := e.forecaster.Forecast(trend, months)
		forecast = &CostForecast{
			CompanyID:              companyID,
			HistoricalMonthlyCosts: MonthlyCostSeries(orders),
			ForecastedMonthlyCosts: projected,
			Trend:                  trend,
			Budget:                 e.forecaster.BudgetRecommendation(projected, trend),
			GeneratedAt:            e.now(),
		}
	}); err != nil {
		return nil, err
	}

	e.logger.Debug("maintenance costs forecast",
		zap.String("company_id", companyID),
		zap.Int("months", months),
		zap.String("trend", string(forecast.Trend.TrendDirection)),
	)
	return forecast, nil
}

func (e *Engine) computeAnomalies(ctx context.Context, companyID string) ([]MaintenanceAnomaly, error) {
	to := e.now()
	from := to.AddDate(0, -e.cfg.AnomalyWindowMonths, 0)
	orders, err := e.gateway.WorkOrdersByCompanyAndDateRange(ctx, companyID, from, to)
	if err != nil {
		return nil, e.wrapGateway("company work orders", err)
	}

	var anomalies []MaintenanceAnomaly
	if err := e.safely(opAnomalies, func() {
		anomalies = e.detector.Detect(orders)
	}); err != nil {
		return nil, err
	}

	e.logger.Debug("maintenance anomalies detected",
		zap.String("company_id", companyID),
		zap.Int("count", len(anomalies)),
	)
	return anomalies, nil
}

func (e *Engine) computeSchedule(ctx context.Context, companyID string, horizonDays int) (*MaintenanceSchedule, error) {
	var schedule *MaintenanceSchedule
	var buildErr error
	if err := e.safely(opSchedule, func() {
		schedule, buildErr = e.optimizer.Build(ctx, companyID, horizonDays)
	}); err != nil {
		return nil, err
	}
	if buildErr != nil {
		return nil, e.wrapGateway("schedule build", buildErr)
	}
	return schedule, nil
}

// safely runs a model computation and converts panics into computation
// failures.
func (e *Engine) safely(operation string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrComputation, operation, r)
		}
	}()
	fn()
	return nil
}

// wrapGateway preserves NotFound and cancellation, and folds every other
// gateway failure into the computation-failure kind.
func (e *Engine) wrapGateway(operation string, err error) error {
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrComputation, operation, err)
}
