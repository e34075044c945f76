package analytics

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lead times used when a prediction carries no projected maintenance date.
var defaultLeadDays = map[MaintenanceType]int{
	MaintenanceEmergency:           1,
	MaintenanceUrgentPreventive:    7,
	MaintenanceScheduledPreventive: 14,
	MaintenanceRoutine:             30,
}

// ScheduleOptimizer combines per-asset failure predictions into a ranked,
// resource-aware maintenance schedule. Predictions for independent assets
// are fanned out over a bounded worker pool; the final ordering is
// deterministic regardless of completion order.
type ScheduleOptimizer struct {
	logger  *zap.Logger
	cfg     Config
	gateway HistoryGateway
	model   *FailureRiskModel
	now     func() time.Time
}

// NewScheduleOptimizer creates an optimizer over the given gateway and
// risk model.
func NewScheduleOptimizer(logger *zap.Logger, cfg Config, gateway HistoryGateway, model *FailureRiskModel, now func() time.Time) *ScheduleOptimizer {
	if now == nil {
		now = time.Now
	}
	return &ScheduleOptimizer{
		logger:  logger,
		cfg:     cfg,
		gateway: gateway,
		model:   model,
		now:     now,
	}
}

// Build predicts failure risk for every active asset of the company and
// schedules the ones whose probability exceeds the inclusion threshold.
// Items are ordered by probability descending, ties broken by ascending
// cost per probability point. Any per-asset failure fails the whole
// schedule; partial results are never returned.
func (o *ScheduleOptimizer) Build(ctx context.Context, companyID string, horizonDays int) (*MaintenanceSchedule, error) {
	assets, err := o.gateway.ActiveAssetsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	windowStart := o.now()
	windowEnd := windowStart.AddDate(0, 0, horizonDays)

	predictions := make([]*FailurePrediction, len(assets))
	errs := make([]error, len(assets))

	workers := o.cfg.MaxConcurrency
	if workers > len(assets) {
		workers = len(assets)
	}
	if workers > 0 {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					predictions[i], errs[i] = o.predictAsset(ctx, &assets[i], horizonDays)
				}
			}()
		}
		for i := range assets {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("predicting asset %s: %w", assets[i].ID, err)
		}
	}

	var items []ScheduledMaintenanceItem
	for _, p := range predictions {
		if p.FailureProbability <= o.cfg.InclusionThreshold {
			continue
		}
		maintenanceType := MaintenanceTypeFor(p.RiskLevel)
		items = append(items, ScheduledMaintenanceItem{
			AssetID:            p.AssetID,
			AssetName:          p.AssetName,
			ScheduledDate:      o.scheduledDate(p, maintenanceType, windowStart, windowEnd),
			FailureProbability: p.FailureProbability,
			EstimatedCost:      p.EstimatedCost,
			MaintenanceType:    maintenanceType,
			Recommendations:    p.Recommendations,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].FailureProbability != items[j].FailureProbability {
			return items[i].FailureProbability > items[j].FailureProbability
		}
		// Cheaper per unit of risk first. Probabilities above the
		// inclusion threshold are never zero.
		return items[i].EstimatedCost/items[i].FailureProbability <
			items[j].EstimatedCost/items[j].FailureProbability
	})

	schedule := &MaintenanceSchedule{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Items:       items,
		Metrics:     o.metrics(items),
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	o.logger.Debug("built maintenance schedule",
		zap.String("company_id", companyID),
		zap.Int("assets_considered", len(assets)),
		zap.Int("items_scheduled", len(items)),
	)
	return schedule, nil
}

func (o *ScheduleOptimizer) predictAsset(ctx context.Context, asset *Asset, horizonDays int) (*FailurePrediction, error) {
	reports, err := o.gateway.AssetMaintenanceReports(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	orders, err := o.gateway.AssetWorkOrderHistory(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	return o.model.Predict(asset, reports, orders, horizonDays), nil
}

// scheduledDate places the item at its predicted maintenance date clamped
// into the window, falling back to a lead time keyed off the maintenance
// type when no date was predicted.
func (o *ScheduleOptimizer) scheduledDate(p *FailurePrediction, t MaintenanceType, windowStart, windowEnd time.Time) time.Time {
	if p.PredictedMaintenanceDate != nil {
		d := *p.PredictedMaintenanceDate
		if d.Before(windowStart) {
			return windowStart
		}
		if d.After(windowEnd) {
			return windowEnd
		}
		return d
	}
	d := windowStart.AddDate(0, 0, defaultLeadDays[t])
	if d.After(windowEnd) {
		return windowEnd
	}
	return d
}

func (o *ScheduleOptimizer) metrics(items []ScheduledMaintenanceItem) ScheduleMetrics {
	m := ScheduleMetrics{TotalItems: len(items)}
	if len(items) == 0 {
		return m
	}
	probabilitySum := 0.0
	for _, item := range items {
		m.TotalEstimatedCost += item.EstimatedCost
		probabilitySum += item.FailureProbability
		if item.FailureProbability > o.cfg.CriticalThreshold {
			m.CriticalItemCount++
		}
	}
	m.AverageFailureProbability = probabilitySum / float64(len(items))
	return m
}
