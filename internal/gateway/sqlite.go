package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/maintwise/maintwise/internal/analytics"
)

// Config defines the reference gateway settings.
type Config struct {
	DSN string `yaml:"dsn"`
}

// SQLite is a read-only HistoryGateway over a SQLite database. It is the
// reference adapter used by the CLI and tests; production deployments
// supply their own gateway over the real persistence layer.
type SQLite struct {
	db *sql.DB
}

var _ analytics.HistoryGateway = (*SQLite)(nil)

// Open opens the gateway database.
func Open(cfg Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening gateway database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (g *SQLite) Close() error {
	return g.db.Close()
}

// FindAsset returns one asset by id.
func (g *SQLite) FindAsset(ctx context.Context, assetID string) (*analytics.Asset, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT id, name, acquired_at, last_maintained_at FROM assets WHERE id = ?`, assetID)

	asset, err := scanAsset(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %s: %w", assetID, analytics.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// AssetMaintenanceReports returns the asset's maintenance reports, most
// recent first.
func (g *SQLite) AssetMaintenanceReports(ctx context.Context, assetID string) ([]analytics.MaintenanceRecord, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT reported_at, priority, actual_cost
		 FROM maintenance_reports WHERE asset_id = ?
		 ORDER BY reported_at DESC`, assetID)
	if err != nil {
		return nil, fmt.Errorf("querying maintenance reports: %w", err)
	}
	defer rows.Close()

	var reports []analytics.MaintenanceRecord
	for rows.Next() {
		var (
			reportedAt string
			priority   string
			cost       sql.NullFloat64
		)
		if err := rows.Scan(&reportedAt, &priority, &cost); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, reportedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing reported_at: %w", err)
		}
		record := analytics.MaintenanceRecord{
			ReportedAt: ts,
			Priority:   analytics.Priority(priority),
		}
		if cost.Valid {
			record.ActualCost = &cost.Float64
		}
		reports = append(reports, record)
	}
	return reports, rows.Err()
}

// AssetWorkOrderHistory returns the asset's work orders, most recent first.
func (g *SQLite) AssetWorkOrderHistory(ctx context.Context, assetID string) ([]analytics.WorkOrderRecord, error) {
	return g.workOrders(ctx,
		`SELECT id, completed_at, total_cost, duration_minutes
		 FROM work_orders WHERE asset_id = ?
		 ORDER BY completed_at DESC`, assetID)
}

// WorkOrdersByCompanyAndDateRange returns the company's work orders in the
// range, most recent first.
func (g *SQLite) WorkOrdersByCompanyAndDateRange(ctx context.Context, companyID string, from, to time.Time) ([]analytics.WorkOrderRecord, error) {
	if err := g.companyExists(ctx, companyID); err != nil {
		return nil, err
	}
	return g.workOrders(ctx,
		`SELECT id, completed_at, total_cost, duration_minutes
		 FROM work_orders WHERE company_id = ? AND completed_at BETWEEN ? AND ?
		 ORDER BY completed_at DESC`,
		companyID, from.Format(time.RFC3339), to.Format(time.RFC3339))
}

// ActiveAssetsByCompany returns the company's active assets.
func (g *SQLite) ActiveAssetsByCompany(ctx context.Context, companyID string) ([]analytics.Asset, error) {
	if err := g.companyExists(ctx, companyID); err != nil {
		return nil, err
	}

	rows, err := g.db.QueryContext(ctx,
		`SELECT id, name, acquired_at, last_maintained_at
		 FROM assets WHERE company_id = ? AND active = 1
		 ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var assets []analytics.Asset
	for rows.Next() {
		asset, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

func (g *SQLite) companyExists(ctx context.Context, companyID string) error {
	var one int
	err := g.db.QueryRowContext(ctx, `SELECT 1 FROM companies WHERE id = ?`, companyID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("company %s: %w", companyID, analytics.ErrNotFound)
	}
	return err
}

func (g *SQLite) workOrders(ctx context.Context, query string, args ...any) ([]analytics.WorkOrderRecord, error) {
	rows, err := g.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying work orders: %w", err)
	}
	defer rows.Close()

	var orders []analytics.WorkOrderRecord
	for rows.Next() {
		var (
			id          string
			completedAt string
			cost        sql.NullFloat64
			minutes     sql.NullInt64
		)
		if err := rows.Scan(&id, &completedAt, &cost, &minutes); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, completedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing completed_at: %w", err)
		}
		order := analytics.WorkOrderRecord{
			ID:          id,
			CompletedAt: ts,
		}
		if cost.Valid {
			order.TotalCost = &cost.Float64
		}
		if minutes.Valid {
			order.Duration = time.Duration(minutes.Int64) * time.Minute
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanAsset(scan func(...any) error) (*analytics.Asset, error) {
	var (
		id, name       string
		acquiredAt     sql.NullString
		lastMaintained sql.NullString
	)
	if err := scan(&id, &name, &acquiredAt, &lastMaintained); err != nil {
		return nil, err
	}

	asset := &analytics.Asset{ID: id, Name: name}
	if acquiredAt.Valid {
		ts, err := time.Parse(time.RFC3339, acquiredAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing acquired_at: %w", err)
		}
		asset.AcquiredAt = &ts
	}
	if lastMaintained.Valid {
		ts, err := time.Parse(time.RFC3339, lastMaintained.String)
		if err != nil {
			return nil, fmt.Errorf("parsing last_maintained_at: %w", err)
		}
		asset.LastMaintainedAt = &ts
	}
	return asset, nil
}
