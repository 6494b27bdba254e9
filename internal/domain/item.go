package domain

// Represents one line of a drop's manifest.
// Raw items arrive with nil MassKg/VolumeM3; the catalog validator fills them
// from the catalog. An enriched item always carries both.
type Item struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Filename          string   `json:"filename,omitempty"`
	ImagePath         string   `json:"image_path,omitempty"`
	Quantity          int      `json:"quantity"`
	MassKg            *float64 `json:"mass_kg,omitempty"`
	VolumeM3          *float64 `json:"volume_m3,omitempty"`
	EstimatedVolumeM3 *float64 `json:"estimated_volume_m3,omitempty"`
	Category          string   `json:"category,omitempty"`
	Fragile           bool     `json:"fragile,omitempty"`
	NeedsDisassembly  bool     `json:"needs_disassembly,omitempty"`
	WorkersRequired   int      `json:"workers_required,omitempty"`
}

func (it Item) Enriched() bool {
	return it.MassKg != nil && it.VolumeM3 != nil
}

// Units of this line, treating a non-positive quantity as one.
func (it Item) Units() int {
	if it.Quantity < 1 {
		return 1
	}
	return it.Quantity
}

// Total mass of the line. Zero for unenriched items.
func (it Item) TotalMassKg() float64 {
	if it.MassKg == nil {
		return 0
	}
	return *it.MassKg * float64(it.Units())
}

// Total volume of the line. Zero for unenriched items.
func (it Item) TotalVolumeM3() float64 {
	if it.VolumeM3 == nil {
		return 0
	}
	return *it.VolumeM3 * float64(it.Units())
}

// Sum of units across a manifest.
func ItemCount(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Units()
	}
	return n
}

func ManifestMassKg(items []Item) float64 {
	var m float64
	for _, it := range items {
		m += it.TotalMassKg()
	}
	return m
}

func ManifestVolumeM3(items []Item) float64 {
	var v float64
	for _, it := range items {
		v += it.TotalVolumeM3()
	}
	return v
}

// Float64Ptr is a small helper for building items in code and tests.
func Float64Ptr(v float64) *float64 { return &v }
