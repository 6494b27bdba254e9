package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCatalogQuery := `
	CREATE TABLE IF NOT EXISTS catalog_items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		filename TEXT NOT NULL DEFAULT '',
		image_path TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		mass_kg DOUBLE PRECISION,
		volume_m3 DOUBLE PRECISION,
		fragile BOOLEAN NOT NULL DEFAULT FALSE,
		needs_disassembly BOOLEAN NOT NULL DEFAULT FALSE,
		workers_required INTEGER NOT NULL DEFAULT 1 CHECK (workers_required >= 0)
	);
	`

	// Databases created before the handling columns existed.
	alterCatalogQuery := `
	ALTER TABLE catalog_items
		ADD COLUMN IF NOT EXISTS needs_disassembly BOOLEAN NOT NULL DEFAULT FALSE,
		ADD COLUMN IF NOT EXISTS workers_required INTEGER NOT NULL DEFAULT 1;
	`

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('active', 'inactive', 'suspended'))
	);
	`

	createRoutesQuery := `
	CREATE TABLE IF NOT EXISTS routes (
		id TEXT PRIMARY KEY,
		area TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('planned', 'assigned', 'in_progress', 'completed', 'cancelled')),
		distance_km DOUBLE PRECISION NOT NULL,
		duration_minutes DOUBLE PRECISION NOT NULL,
		value NUMERIC(12, 2) NOT NULL DEFAULT 0,
		driver_id TEXT REFERENCES drivers(id),
		vehicle_id TEXT,
		backhaul_eligible BOOLEAN NOT NULL DEFAULT FALSE,
		full_load BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	// A driver holds at most one active route. Racing assignments that both pass
	// their reads fail here with a unique violation.
	createActiveRouteIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_routes_one_active_per_driver
	ON routes(driver_id)
	WHERE driver_id IS NOT NULL AND status IN ('planned', 'assigned', 'in_progress');
	`

	createDropsQuery := `
	CREATE TABLE IF NOT EXISTS drops (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL CHECK (status IN ('booked', 'routed', 'completed', 'cancelled')),
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lng DOUBLE PRECISION NOT NULL,
		pickup_label TEXT NOT NULL DEFAULT '',
		dropoff_lat DOUBLE PRECISION NOT NULL,
		dropoff_lng DOUBLE PRECISION NOT NULL,
		dropoff_label TEXT NOT NULL DEFAULT '',
		window_start TIMESTAMPTZ NOT NULL,
		window_end TIMESTAMPTZ NOT NULL,
		quoted_price NUMERIC(12, 2) NOT NULL DEFAULT 0,
		items JSONB NOT NULL DEFAULT '[]',
		route_id TEXT REFERENCES routes(id)
	);
	`

	createPlannableIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_drops_plannable
	ON drops(window_start)
	WHERE status = 'booked' AND route_id IS NULL;
	`

	createStopsQuery := `
	CREATE TABLE IF NOT EXISTS route_stops (
		id TEXT PRIMARY KEY,
		route_id TEXT NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		drop_id TEXT NOT NULL REFERENCES drops(id),
		kind TEXT NOT NULL CHECK (kind IN ('pickup', 'dropoff')),
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		operation_minutes DOUBLE PRECISION NOT NULL,
		items JSONB NOT NULL DEFAULT '[]',
		UNIQUE (route_id, seq)
	);
	`

	createAssignmentsQuery := `
	CREATE TABLE IF NOT EXISTS driver_assignments (
		id TEXT PRIMARY KEY,
		route_id TEXT NOT NULL REFERENCES routes(id),
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		assigned_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		outcome TEXT NOT NULL CHECK (outcome IN ('pending', 'accepted', 'expired', 'rejected')),
		responded_at TIMESTAMPTZ,
		estimated_earnings NUMERIC(12, 2) NOT NULL DEFAULT 0
	);
	`

	createAssignmentIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_driver_assignments_route
	ON driver_assignments(route_id, assigned_at DESC);
	`

	statements := []string{
		createCatalogQuery,
		alterCatalogQuery,
		createDriversQuery,
		createRoutesQuery,
		createActiveRouteIndexQuery,
		createDropsQuery,
		createPlannableIndexQuery,
		createStopsQuery,
		createAssignmentsQuery,
		createAssignmentIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
