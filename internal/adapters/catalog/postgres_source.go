package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
)

// PostgresSource reads the catalog from the catalog_items table.
type PostgresSource struct{ DB *sql.DB }

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{DB: db}
}

func (s *PostgresSource) LoadCatalog(ctx context.Context) (_ []ports.CatalogEntry, err error) {
	defer obs.Time(ctx, "catalog.postgres.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("catalog postgres: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, name, filename, image_path, category, mass_kg, volume_m3, fragile, needs_disassembly, workers_required
	FROM catalog_items
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: query catalog_items table: %w", err)
	}
	defer rows.Close()

	entries := make([]ports.CatalogEntry, 0, 256)
	for rows.Next() {
		var e ports.CatalogEntry
		var mass, volume sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.Name, &e.Filename, &e.ImagePath, &e.Category, &mass, &volume, &e.Fragile, &e.NeedsDisassembly, &e.WorkersRequired); err != nil {
			return nil, fmt.Errorf("load catalog: scan row: %w", err)
		}
		if mass.Valid {
			v := mass.Float64
			e.MassKg = &v
		}
		if volume.Valid {
			v := volume.Float64
			e.VolumeM3 = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: row iteration: %w", err)
	}

	return entries, nil
}
