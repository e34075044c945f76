package analytics

import (
	"context"
	"time"
)

// HistoryGateway is the read-only view onto the persistence layer. The
// engine never writes through it and treats every returned slice as a
// snapshot valid for one computation. Record slices are ordered
// most-recent-first.
//
// The engine does not manage transactions, retries or consistency for the
// gateway side; transient storage failures surface as computation failures.
type HistoryGateway interface {
	// FindAsset returns the asset or an error wrapping ErrNotFound.
	FindAsset(ctx context.Context, assetID string) (*Asset, error)

	// AssetMaintenanceReports returns the chronological maintenance
	// reports for an asset, most recent first.
	AssetMaintenanceReports(ctx context.Context, assetID string) ([]MaintenanceRecord, error)

	// AssetWorkOrderHistory returns the work orders for an asset, most
	// recent first.
	AssetWorkOrderHistory(ctx context.Context, assetID string) ([]WorkOrderRecord, error)

	// WorkOrdersByCompanyAndDateRange returns the company's work orders
	// completed within [from, to], most recent first.
	WorkOrdersByCompanyAndDateRange(ctx context.Context, companyID string, from, to time.Time) ([]WorkOrderRecord, error)

	// ActiveAssetsByCompany returns the company's active assets, or an
	// error wrapping ErrNotFound for an unknown company.
	ActiveAssetsByCompany(ctx context.Context, companyID string) ([]Asset, error)
}
