package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"route-planner-service/internal/ports"
	"strconv"
	"strings"
)

// FileSource reads the catalog from a JSON dataset file on every load.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

type datasetFile struct {
	Metadata struct {
		Version    string `json:"version"`
		TotalItems int    `json:"total_items"`
	} `json:"metadata"`
	Items []datasetItem `json:"items"`
}

// Dataset rows use "weight"/"volume" and sometimes carry numbers as strings.
type datasetItem struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Filename            string    `json:"filename"`
	ImagePath           string    `json:"image_path"`
	Category            string    `json:"category"`
	Weight              flexFloat `json:"weight"`
	MassKg              flexFloat `json:"mass_kg"`
	Volume              flexFloat `json:"volume"`
	VolumeM3            flexFloat `json:"volume_m3"`
	Fragile             bool      `json:"fragile"`
	DismantlingRequired bool      `json:"dismantling_required"`
	NeedsDisassembly    bool      `json:"needs_disassembly"`
	WorkersRequired     flexFloat `json:"workers_required"`
}

// Absent crew size means one worker.
func (it datasetItem) workers() (int, error) {
	if it.WorkersRequired.Value == nil {
		return 1, nil
	}
	v := *it.WorkersRequired.Value
	if v < 0 || v != math.Trunc(v) {
		return 0, fmt.Errorf("item %q: workers_required must be a non-negative whole number, got %v", it.ID, v)
	}
	return int(v), nil
}

// flexFloat decodes a JSON number or numeric string. Null, absent and empty
// string all leave it unset.
type flexFloat struct {
	Value *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse numeric string %q: %w", s, err)
		}
		f.Value = &v
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func firstSet(values ...flexFloat) *float64 {
	for _, v := range values {
		if v.Value != nil {
			return v.Value
		}
	}
	return nil
}

// Load and decode the dataset file.
func (s *FileSource) LoadCatalog(ctx context.Context) ([]ports.CatalogEntry, error) {
	if strings.TrimSpace(s.Path) == "" {
		return nil, errors.New("catalog file: path must not be empty")
	}

	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("catalog file: read %q: %w", s.Path, err)
	}

	var data datasetFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("catalog file: parse %q: %w", s.Path, err)
	}
	if data.Items == nil {
		return nil, fmt.Errorf("catalog file: %q has no items array", s.Path)
	}

	entries := make([]ports.CatalogEntry, 0, len(data.Items))
	for _, it := range data.Items {
		workers, err := it.workers()
		if err != nil {
			return nil, fmt.Errorf("catalog file: %q: %w", s.Path, err)
		}
		entries = append(entries, ports.CatalogEntry{
			ID:               strings.TrimSpace(it.ID),
			Name:             strings.TrimSpace(it.Name),
			Filename:         strings.TrimSpace(it.Filename),
			ImagePath:        strings.TrimSpace(it.ImagePath),
			Category:         it.Category,
			MassKg:           firstSet(it.MassKg, it.Weight),
			VolumeM3:         firstSet(it.VolumeM3, it.Volume),
			Fragile:          it.Fragile,
			NeedsDisassembly: it.DismantlingRequired || it.NeedsDisassembly,
			WorkersRequired:  workers,
		})
	}

	return entries, nil
}
