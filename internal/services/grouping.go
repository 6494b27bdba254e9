package services

import (
	"cmp"
	"fmt"
	"math"
	"regexp"
	"route-planner-service/internal/domain"
	"slices"
	"strings"
)

// UK outward-code style prefix, e.g. "SW1", "M4", "EC1A".
var areaCodePattern = regexp.MustCompile(`(?i)([A-Z]{1,2}[0-9][A-Z0-9]?)`)

// AreaKey derives a grouping key from the pickup location.
// The postcode prefix in the label wins; otherwise a 0.1 degree grid cell is used.
func AreaKey(pickup domain.Location) string {
	if m := areaCodePattern.FindStringSubmatch(pickup.Label); m != nil {
		return strings.ToUpper(m[1])
	}
	return fmt.Sprintf("AREA_%d_%d",
		int(math.Floor(pickup.Lat*10)),
		int(math.Floor(pickup.Lng*10)),
	)
}

// Packing efficiency used for ordering: lighter/smaller per unit first.
func dropEfficiency(d domain.Drop) float64 {
	n := d.ItemCount()
	if len(d.Items) == 0 || n == 0 {
		return 0
	}
	return (d.TotalMassKg() + d.TotalVolumeM3()*100) / float64(n)
}

// GroupDrops buckets drops by area key and orders each bucket by window start,
// then efficiency, then drop id.
func GroupDrops(drops []domain.Drop) map[string][]domain.Drop {
	groups := make(map[string][]domain.Drop)
	for _, d := range drops {
		key := AreaKey(d.Pickup)
		groups[key] = append(groups[key], d)
	}

	for key := range groups {
		SortDrops(groups[key])
	}

	return groups
}

// SortDrops orders drops in place for sequencing.
func SortDrops(drops []domain.Drop) {
	slices.SortStableFunc(drops, func(a, b domain.Drop) int {
		if c := a.WindowStart.Compare(b.WindowStart); c != 0 {
			return c
		}
		if c := cmp.Compare(dropEfficiency(a), dropEfficiency(b)); c != 0 {
			return c
		}
		// Tie-breaker keeps ordering deterministic for identical windows and loads.
		return cmp.Compare(a.ID, b.ID)
	})
}

// Group keys in ascending order so runs are reproducible.
func SortedAreaKeys(groups map[string][]domain.Drop) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SequenceStops emits a pickup then a dropoff stop for each drop, in order.
func SequenceStops(drops []domain.Drop) []domain.RouteStop {
	stops := make([]domain.RouteStop, 0, len(drops)*2)
	for _, d := range drops {
		op := StopOperationMinutes(d.ItemCount())
		stops = append(stops,
			domain.RouteStop{
				DropID:           d.ID,
				Kind:             domain.StopPickup,
				Location:         d.Pickup,
				Items:            d.Items,
				OperationMinutes: op,
			},
			domain.RouteStop{
				DropID:           d.ID,
				Kind:             domain.StopDropoff,
				Location:         d.Dropoff,
				Items:            d.Items,
				OperationMinutes: op,
			},
		)
	}
	return stops
}
