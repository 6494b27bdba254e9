package ports

import "context"

// One authoritative catalog record. Nil MassKg/VolumeM3 means the field is missing
// from the source, which is distinct from an explicit zero.
type CatalogEntry struct {
	ID               string   `json:"id" validate:"required"`
	Name             string   `json:"name" validate:"required"`
	Filename         string   `json:"filename,omitempty"`
	ImagePath        string   `json:"image_path,omitempty"`
	Category         string   `json:"category,omitempty"`
	MassKg           *float64 `json:"mass_kg,omitempty" validate:"omitempty,gte=0"`
	VolumeM3         *float64 `json:"volume_m3,omitempty" validate:"omitempty,gte=0"`
	Fragile          bool     `json:"fragile,omitempty"`
	NeedsDisassembly bool     `json:"needs_disassembly,omitempty"`
	WorkersRequired  int      `json:"workers_required,omitempty" validate:"gte=0"`
}

// Port: a boundary for reading the item catalog.
type CatalogSource interface {
	// Return every catalog entry. Called on first use and on every reload.
	LoadCatalog(ctx context.Context) ([]CatalogEntry, error)
}
