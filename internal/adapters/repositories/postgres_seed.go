package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type DriverSeed struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

type DropSeed struct {
	ID          string          `json:"id" validate:"required"`
	Pickup      domain.Location `json:"pickup"`
	Dropoff     domain.Location `json:"dropoff"`
	Items       []domain.Item   `json:"items" validate:"required,min=1,dive"`
	WindowStart time.Time       `json:"window_start" validate:"required"`
	WindowEnd   time.Time       `json:"window_end" validate:"required,gtefield=WindowStart"`
	QuotedPrice decimal.Decimal `json:"quoted_price"`
}

type SeedFile struct {
	Drivers []DriverSeed `json:"drivers" validate:"dive"`
	Drops   []DropSeed   `json:"drops" validate:"dive"`
}

// ReadSeedFile parses and validates a seed document.
func ReadSeedFile(jsonPath string) (SeedFile, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return SeedFile{}, fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data SeedFile
	if err := json.Unmarshal(bytes, &data); err != nil {
		return SeedFile{}, fmt.Errorf("seed: parse json: %w", err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(data); err != nil {
		return SeedFile{}, fmt.Errorf("seed: validate: %w", err)
	}

	for i, d := range data.Drops {
		if !d.Pickup.Valid() || !d.Dropoff.Valid() {
			return SeedFile{}, fmt.Errorf("seed: drop at index %d (%s): coordinates out of range", i, d.ID)
		}
	}

	return data, nil
}

// Populate drivers and booked drops from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed: DB is nil")
	}

	data, err := ReadSeedFile(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	driverStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO drivers (id, name, status)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		status = EXCLUDED.status;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare driver insert: %w", err)
	}
	defer driverStmt.Close()

	for _, d := range data.Drivers {
		status := strings.TrimSpace(d.Status)
		if status == "" {
			status = string(domain.DriverStatusActive)
		}
		if _, err := driverStmt.ExecContext(ctx, d.ID, d.Name, status); err != nil {
			return fmt.Errorf("seed: insert driver id=%s: %w", d.ID, err)
		}
	}

	// Drops that were already routed keep their state.
	dropStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO drops (
		id, status,
		pickup_lat, pickup_lng, pickup_label,
		dropoff_lat, dropoff_lng, dropoff_label,
		window_start, window_end, quoted_price, items
	)
	VALUES ($1, 'booked', $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO NOTHING;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare drop insert: %w", err)
	}
	defer dropStmt.Close()

	for _, d := range data.Drops {
		items, err := json.Marshal(d.Items)
		if err != nil {
			return fmt.Errorf("seed: encode items of drop id=%s: %w", d.ID, err)
		}
		_, err = dropStmt.ExecContext(ctx,
			d.ID,
			d.Pickup.Lat, d.Pickup.Lng, d.Pickup.Label,
			d.Dropoff.Lat, d.Dropoff.Lng, d.Dropoff.Label,
			d.WindowStart, d.WindowEnd, d.QuotedPrice, items,
		)
		if err != nil {
			return fmt.Errorf("seed: insert drop id=%s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

// UpsertCatalog replaces catalog rows with the given entries.
func UpsertCatalog(ctx context.Context, db *sql.DB, entries []ports.CatalogEntry) error {
	if db == nil {
		return errors.New("upsert catalog: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO catalog_items (id, name, filename, image_path, category, mass_kg, volume_m3, fragile, needs_disassembly, workers_required)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		filename = EXCLUDED.filename,
		image_path = EXCLUDED.image_path,
		category = EXCLUDED.category,
		mass_kg = EXCLUDED.mass_kg,
		volume_m3 = EXCLUDED.volume_m3,
		fragile = EXCLUDED.fragile,
		needs_disassembly = EXCLUDED.needs_disassembly,
		workers_required = EXCLUDED.workers_required;
	`)
	if err != nil {
		return fmt.Errorf("upsert catalog: prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.Filename, e.ImagePath, e.Category, e.MassKg, e.VolumeM3, e.Fragile, e.NeedsDisassembly, e.WorkersRequired); err != nil {
			return fmt.Errorf("upsert catalog: id=%s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert catalog: commit tx: %w", err)
	}
	return nil
}
