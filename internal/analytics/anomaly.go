package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// AnomalyDetector flags work orders that deviate far from the company's
// recent behavior. The cost rule is the primary detector; frequency and
// duration detection generalize the same idea with a z-score rule and can
// be switched off, in which case callers see fewer anomaly types, never an
// error.
type AnomalyDetector struct {
	cfg Config
	now func() time.Time
}

// NewAnomalyDetector creates a detector with the given tuning.
func NewAnomalyDetector(cfg Config, now func() time.Time) *AnomalyDetector {
	if now == nil {
		now = time.Now
	}
	return &AnomalyDetector{cfg: cfg, now: now}
}

// Detect runs all enabled detectors over the work orders and returns the
// combined anomalies sorted descending by severity.
func (d *AnomalyDetector) Detect(orders []WorkOrderRecord) []MaintenanceAnomaly {
	anomalies := d.costAnomalies(orders)
	if d.cfg.EnableFrequencyAnomalies {
		anomalies = append(anomalies, d.frequencyAnomalies(orders)...)
	}
	if d.cfg.EnableDurationAnomalies {
		anomalies = append(anomalies, d.durationAnomalies(orders)...)
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		if anomalies[i].SeverityScore != anomalies[j].SeverityScore {
			return anomalies[i].SeverityScore > anomalies[j].SeverityScore
		}
		return anomalies[i].WorkOrderID < anomalies[j].WorkOrderID
	})
	return anomalies
}

// costAnomalies flags orders whose cost exceeds the threshold multiple of
// the mean cost. Severity is the ratio of cost to mean.
func (d *AnomalyDetector) costAnomalies(orders []WorkOrderRecord) []MaintenanceAnomaly {
	var costed []WorkOrderRecord
	var costs []float64
	for _, o := range orders {
		if o.TotalCost != nil {
			costed = append(costed, o)
			costs = append(costs, *o.TotalCost)
		}
	}
	if len(costed) < d.cfg.CostAnomalyMinSamples {
		return nil
	}

	avg := stat.Mean(costs, nil)
	if avg <= 0 {
		return nil
	}
	threshold := d.cfg.CostAnomalyThreshold * avg

	var anomalies []MaintenanceAnomaly
	for _, o := range costed {
		if *o.TotalCost > threshold {
			anomalies = append(anomalies, MaintenanceAnomaly{
				ID:            uuid.NewString(),
				WorkOrderID:   o.ID,
				Type:          AnomalyCostSpike,
				Description:   fmt.Sprintf("work order cost %.2f is %.1fx the recent mean of %.2f", *o.TotalCost, *o.TotalCost/avg, avg),
				SeverityScore: *o.TotalCost / avg,
				DetectedAt:    d.now(),
			})
		}
	}
	return anomalies
}

// frequencyAnomalies flags calendar months whose work-order count sits
// beyond the z-score threshold of the monthly counts. These anomalies
// describe a period, so WorkOrderID is left empty.
func (d *AnomalyDetector) frequencyAnomalies(orders []WorkOrderRecord) []MaintenanceAnomaly {
	counts := make(map[string]float64)
	for _, o := range orders {
		counts[o.CompletedAt.Format(monthKeyLayout)]++
	}
	if len(counts) < 3 {
		return nil
	}

	months := make([]string, 0, len(counts))
	values := make([]float64, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		values = append(values, counts[m])
	}

	avg := stat.Mean(values, nil)
	std := stat.PopStdDev(values, nil)
	if std == 0 {
		return nil
	}

	var anomalies []MaintenanceAnomaly
	for i, m := range months {
		z := (values[i] - avg) / std
		if z > d.cfg.ZScoreThreshold {
			anomalies = append(anomalies, MaintenanceAnomaly{
				ID:            uuid.NewString(),
				Type:          AnomalyFrequencySpike,
				Description:   fmt.Sprintf("%d work orders in %s against a monthly mean of %.1f", int(values[i]), m, avg),
				SeverityScore: z,
				DetectedAt:    d.now(),
			})
		}
	}
	return anomalies
}

// durationAnomalies flags orders whose duration sits beyond the z-score
// threshold of the recorded durations.
func (d *AnomalyDetector) durationAnomalies(orders []WorkOrderRecord) []MaintenanceAnomaly {
	var timed []WorkOrderRecord
	var hours []float64
	for _, o := range orders {
		if o.Duration > 0 {
			timed = append(timed, o)
			hours = append(hours, o.Duration.Hours())
		}
	}
	if len(timed) < 3 {
		return nil
	}

	avg := stat.Mean(hours, nil)
	std := stat.PopStdDev(hours, nil)
	if std == 0 {
		return nil
	}

	var anomalies []MaintenanceAnomaly
	for i, o := range timed {
		z := (hours[i] - avg) / std
		if z > d.cfg.ZScoreThreshold {
			anomalies = append(anomalies, MaintenanceAnomaly{
				ID:            uuid.NewString(),
				WorkOrderID:   o.ID,
				Type:          AnomalyExcessiveDuration,
				Description:   fmt.Sprintf("work order ran %.1f hours against a mean of %.1f", hours[i], avg),
				SeverityScore: z,
				DetectedAt:    d.now(),
			})
		}
	}
	return anomalies
}
