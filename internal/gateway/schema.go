package gateway

import "database/sql"

// Schema is the reference gateway schema, used by tests and the CLI's
// init-db command. Timestamps are stored as RFC 3339 strings.
const Schema = `
CREATE TABLE IF NOT EXISTS companies (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
	id                 TEXT PRIMARY KEY,
	company_id         TEXT NOT NULL REFERENCES companies(id),
	name               TEXT NOT NULL,
	acquired_at        TEXT,
	last_maintained_at TEXT,
	active             INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS maintenance_reports (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	asset_id    TEXT NOT NULL REFERENCES assets(id),
	reported_at TEXT NOT NULL,
	priority    TEXT NOT NULL,
	actual_cost REAL
);

CREATE TABLE IF NOT EXISTS work_orders (
	id               TEXT PRIMARY KEY,
	company_id       TEXT NOT NULL REFERENCES companies(id),
	asset_id         TEXT REFERENCES assets(id),
	completed_at     TEXT NOT NULL,
	total_cost       REAL,
	duration_minutes INTEGER
);

CREATE INDEX IF NOT EXISTS idx_reports_asset ON maintenance_reports(asset_id, reported_at);
CREATE INDEX IF NOT EXISTS idx_orders_asset ON work_orders(asset_id, completed_at);
CREATE INDEX IF NOT EXISTS idx_orders_company ON work_orders(company_id, completed_at);
`

// InitSchema applies the reference schema.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}

// DB exposes the underlying handle for seeding in tests and the CLI.
func (g *SQLite) DB() *sql.DB {
	return g.db
}
