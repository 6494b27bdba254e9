package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/metrics"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Catalog is an in-memory cache over a CatalogSource.
// It is constructed explicitly and shared by planning runs. Reload swaps the
// snapshot atomically; a failed reload keeps the previous snapshot.
type Catalog struct {
	source   ports.CatalogSource
	validate *validator.Validate

	mu   sync.RWMutex
	snap *catalogSnapshot
}

type catalogSnapshot struct {
	entries    []ports.CatalogEntry
	byID       map[string]int
	byName     map[string]int
	byFilename map[string]int
	byImage    map[string]int
	loadedAt   time.Time
}

func NewCatalog(source ports.CatalogSource) *Catalog {
	return &Catalog{
		source:   source,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load the catalog if no snapshot is cached.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.snap != nil
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Reload(ctx)
}

// Reload fetches the source and replaces the snapshot.
// Any entry without mass fails the whole load with a *domain.DataIntegrityError.
func (c *Catalog) Reload(ctx context.Context) (err error) {
	defer obs.Time(ctx, "catalog.Reload")(&err)

	if c.source == nil {
		return errors.New("load catalog: source is nil")
	}

	entries, err := c.source.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: read source: %w", err)
	}

	snap, err := c.buildSnapshot(entries)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	metrics.CatalogEntries.Set(float64(len(snap.entries)))
	log.Info().Int("entries", len(snap.entries)).Msg("catalog loaded")
	return nil
}

// Drop the cached snapshot. The next Load fetches the source again.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return 0
	}
	return len(c.snap.entries)
}

func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return time.Time{}
	}
	return c.snap.loadedAt
}

func (c *Catalog) buildSnapshot(entries []ports.CatalogEntry) (*catalogSnapshot, error) {
	snap := &catalogSnapshot{
		entries:    make([]ports.CatalogEntry, 0, len(entries)),
		byID:       make(map[string]int, len(entries)),
		byName:     make(map[string]int, len(entries)),
		byFilename: make(map[string]int, len(entries)),
		byImage:    make(map[string]int, len(entries)),
		loadedAt:   time.Now(),
	}

	var faults []domain.ItemFault
	missingVolume := 0

	for i, e := range entries {
		if err := c.validate.Struct(e); err != nil {
			faults = append(faults, domain.ItemFault{ItemID: e.ID, Name: e.Name, Reason: fmt.Sprintf("entry %d invalid: %v", i, err)})
			continue
		}
		if e.MassKg == nil {
			faults = append(faults, domain.ItemFault{ItemID: e.ID, Name: e.Name, Reason: "catalog entry has no mass"})
			continue
		}
		if e.VolumeM3 == nil {
			missingVolume++
		}

		if _, dup := snap.byID[e.ID]; dup {
			log.Warn().Str("item_id", e.ID).Msg("duplicate catalog id, keeping first")
			continue
		}

		idx := len(snap.entries)
		snap.entries = append(snap.entries, e)
		snap.byID[e.ID] = idx
		putFirst(snap.byName, normalizeKey(e.Name), idx)
		putFirst(snap.byFilename, normalizeKey(e.Filename), idx)
		putFirst(snap.byImage, normalizeKey(path.Base(e.ImagePath)), idx)
	}

	if len(faults) > 0 {
		return nil, &domain.DataIntegrityError{Op: "load catalog", Faults: faults}
	}
	if missingVolume > 0 {
		log.Warn().Int("entries", missingVolume).Msg("catalog entries without volume; manifests must supply an estimate")
	}

	return snap, nil
}

func putFirst(m map[string]int, key string, idx int) {
	if key == "" || key == "." || key == "/" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = idx
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Lookup resolves an item by id, then name, then filename, then image basename.
func (c *Catalog) Lookup(item domain.Item) (ports.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return ports.CatalogEntry{}, false
	}
	return c.snap.lookup(item)
}

func (s *catalogSnapshot) lookup(item domain.Item) (ports.CatalogEntry, bool) {
	if idx, ok := s.byID[strings.TrimSpace(item.ID)]; ok {
		return s.entries[idx], true
	}
	if idx, ok := s.byName[normalizeKey(item.Name)]; ok {
		return s.entries[idx], true
	}
	if idx, ok := s.byFilename[normalizeKey(item.Filename)]; ok {
		return s.entries[idx], true
	}

	if item.ImagePath != "" {
		base := normalizeKey(path.Base(item.ImagePath))
		if idx, ok := s.byImage[base]; ok {
			return s.entries[idx], true
		}
		if idx, ok := s.byFilename[base]; ok {
			return s.entries[idx], true
		}
	}

	return ports.CatalogEntry{}, false
}

// ValidateAndEnrich returns copies of items with authoritative mass and volume.
// Every failing item is reported in a single *domain.DataIntegrityError.
func (c *Catalog) ValidateAndEnrich(ctx context.Context, items []domain.Item) ([]domain.Item, error) {
	out, faults, err := c.enrich(ctx, "", items)
	if err != nil {
		return nil, err
	}
	if len(faults) > 0 {
		return nil, &domain.DataIntegrityError{Op: "validate items", Faults: faults}
	}
	return out, nil
}

// EnrichDrops enriches every drop's manifest. Faults from all drops are collected
// before failing so one run reports the whole problem set.
func (c *Catalog) EnrichDrops(ctx context.Context, drops []domain.Drop) ([]domain.Drop, error) {
	out := make([]domain.Drop, 0, len(drops))
	var faults []domain.ItemFault

	for _, d := range drops {
		items, f, err := c.enrich(ctx, d.ID, d.Items)
		if err != nil {
			return nil, err
		}
		faults = append(faults, f...)
		d.Items = items
		out = append(out, d)
	}

	if len(faults) > 0 {
		return nil, &domain.DataIntegrityError{Op: "validate drops", Faults: faults}
	}
	return out, nil
}

func (c *Catalog) enrich(ctx context.Context, dropID string, items []domain.Item) ([]domain.Item, []domain.ItemFault, error) {
	if err := c.Load(ctx); err != nil {
		return nil, nil, err
	}

	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if snap == nil {
		return nil, nil, errors.New("validate items: catalog invalidated during validation")
	}

	out := make([]domain.Item, 0, len(items))
	var faults []domain.ItemFault

	for _, raw := range items {
		entry, ok := snap.lookup(raw)
		if !ok {
			faults = append(faults, domain.ItemFault{DropID: dropID, ItemID: raw.ID, Name: raw.Name, Reason: "not found in catalog"})
			continue
		}

		volume := entry.VolumeM3
		if volume == nil {
			volume = raw.EstimatedVolumeM3
		}
		if volume == nil {
			faults = append(faults, domain.ItemFault{DropID: dropID, ItemID: entry.ID, Name: raw.Name, Reason: "no catalog volume and no estimate"})
			continue
		}

		enriched := raw
		enriched.ID = entry.ID
		if enriched.Name == "" {
			enriched.Name = entry.Name
		}
		if entry.Category != "" {
			enriched.Category = entry.Category
		}
		enriched.Fragile = entry.Fragile
		enriched.NeedsDisassembly = entry.NeedsDisassembly
		enriched.WorkersRequired = max(entry.WorkersRequired, 1)
		enriched.MassKg = domain.Float64Ptr(*entry.MassKg)
		enriched.VolumeM3 = domain.Float64Ptr(*volume)
		out = append(out, enriched)
	}

	return out, faults, nil
}
