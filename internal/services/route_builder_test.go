package services

import (
	"fmt"
	"math/rand"
	"route-planner-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testBuilder(capacity domain.VehicleCapacityProfile) *RouteBuilder {
	b := NewRouteBuilder(capacity)
	n := 0
	b.NewID = func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	b.Now = func() time.Time { return time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC) }
	return b
}

func itemOf(massKg, volumeM3 float64, qty int) domain.Item {
	return domain.Item{ID: "item", Quantity: qty, MassKg: f64(massKg), VolumeM3: f64(volumeM3)}
}

// Drops around central London, each a few hundred metres apart.
func londonDrop(id string, i int, items ...domain.Item) domain.Drop {
	return domain.Drop{
		ID:          id,
		Status:      domain.DropStatusBooked,
		Pickup:      domain.Location{Lat: 51.500 + float64(i)*0.002, Lng: -0.120, Label: "SW1A 1AA"},
		Dropoff:     domain.Location{Lat: 51.505 + float64(i)*0.002, Lng: -0.125, Label: "SW1A 2AA"},
		Items:       items,
		WindowStart: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func requirePrefixWithinCapacity(t *testing.T, routes []domain.Route, c domain.VehicleCapacityProfile) {
	t.Helper()
	for _, r := range routes {
		var mass, volume float64
		for i, s := range r.Stops {
			mass += s.MassDelta()
			volume += s.VolumeDelta()
			require.LessOrEqualf(t, mass, c.MaxMassKg+1e-6, "route %s prefix %d mass", r.ID, i)
			require.LessOrEqualf(t, volume, c.MaxVolumeM3+1e-6, "route %s prefix %d volume", r.ID, i)
			require.GreaterOrEqualf(t, mass, -1e-6, "route %s prefix %d mass negative", r.ID, i)
			require.GreaterOrEqualf(t, volume, -1e-6, "route %s prefix %d volume negative", r.ID, i)
		}
		require.LessOrEqual(t, len(r.Stops), c.MaxStops)
	}
}

func TestBuildEmpty(t *testing.T) {
	res := testBuilder(domain.DefaultCapacityProfile()).Build("SW1A", nil)
	require.Empty(t, res.Routes)
	require.Empty(t, res.UnassignedDropIDs)
}

func TestBuildSingleRoute(t *testing.T) {
	drops := []domain.Drop{
		londonDrop("d1", 0, itemOf(50, 0.5, 1)),
		londonDrop("d2", 1, itemOf(50, 0.5, 1)),
		londonDrop("d3", 2, itemOf(50, 0.5, 1)),
	}

	res := testBuilder(domain.DefaultCapacityProfile()).Build("SW1A", SequenceStops(drops))

	require.Len(t, res.Routes, 1)
	require.Empty(t, res.UnassignedDropIDs)

	r := res.Routes[0]
	require.Equal(t, 3, r.DropoffCount())
	require.Len(t, r.Stops, 6)
	require.Equal(t, domain.RouteStatusPlanned, r.Status)
	require.Equal(t, "SW1A", r.Area)
	require.Greater(t, r.DistanceKm, 0.0)
	require.InDelta(t, r.DistanceKm*2+6*15, r.DurationMinutes, 1e-9)
}

func TestBuildOversizeDropIsUnassigned(t *testing.T) {
	drops := []domain.Drop{
		londonDrop("small", 0, itemOf(100, 1, 1)),
		londonDrop("huge", 1, itemOf(1200, 2, 1)),
		londonDrop("small-2", 2, itemOf(100, 1, 1)),
	}

	res := testBuilder(domain.DefaultCapacityProfile()).Build("SW1A", SequenceStops(drops))

	require.Equal(t, []string{"huge"}, res.UnassignedDropIDs)
	for _, r := range res.Routes {
		require.NotContains(t, r.DropIDs(), "huge")
	}
}

func TestBuildSplitsOnStopLimit(t *testing.T) {
	c := domain.DefaultCapacityProfile()
	c.MaxStops = 4

	var drops []domain.Drop
	for i := 0; i < 5; i++ {
		drops = append(drops, londonDrop(fmt.Sprintf("d%d", i), i, itemOf(10, 0.1, 1)))
	}

	res := testBuilder(c).Build("SW1A", SequenceStops(drops))

	require.Len(t, res.Routes, 3)
	require.Empty(t, res.UnassignedDropIDs)
	requirePrefixWithinCapacity(t, res.Routes, c)
	for _, r := range res.Routes {
		require.Equal(t, len(r.Stops), 2*len(r.DropIDs()))
	}
}

func TestBuildSplitsOnDuration(t *testing.T) {
	c := domain.DefaultCapacityProfile()
	c.MaxMinutes = 90

	// 10 units per drop: 30 minutes at each stop.
	drops := []domain.Drop{
		londonDrop("d1", 0, itemOf(1, 0.01, 10)),
		londonDrop("d2", 1, itemOf(1, 0.01, 10)),
	}

	res := testBuilder(c).Build("SW1A", SequenceStops(drops))

	require.Len(t, res.Routes, 2)
	require.Equal(t, []string{"d1"}, res.Routes[0].DropIDs())
	require.Equal(t, []string{"d2"}, res.Routes[1].DropIDs())
}

func TestBuildRejectsDropoffWithoutPickup(t *testing.T) {
	d := londonDrop("orphan", 0, itemOf(20, 0.2, 1))
	stops := SequenceStops([]domain.Drop{d})[1:]

	res := testBuilder(domain.DefaultCapacityProfile()).Build("SW1A", stops)

	require.Empty(t, res.Routes)
	require.Equal(t, []string{"orphan"}, res.UnassignedDropIDs)
}

func TestBuildFlags(t *testing.T) {
	drops := []domain.Drop{
		londonDrop("big", 0, itemOf(950, 2, 1)),
	}

	res := testBuilder(domain.DefaultCapacityProfile()).Build("SW1A", SequenceStops(drops))

	require.Len(t, res.Routes, 1)
	require.True(t, res.Routes[0].FullLoad)
	require.True(t, res.Routes[0].BackhaulEligible)

	// The second pickup keeps the van 75% full after the first dropoff.
	stops := []domain.RouteStop{
		{DropID: "a", Kind: domain.StopPickup, Items: []domain.Item{itemOf(100, 1, 1)}, OperationMinutes: 15},
		{DropID: "b", Kind: domain.StopPickup, Items: []domain.Item{itemOf(750, 1, 1)}, OperationMinutes: 15},
		{DropID: "a", Kind: domain.StopDropoff, Items: []domain.Item{itemOf(100, 1, 1)}, OperationMinutes: 15},
	}
	res = testBuilder(domain.DefaultCapacityProfile()).Build("X", stops)
	require.Len(t, res.Routes, 1)
	require.False(t, res.Routes[0].BackhaulEligible)
	require.False(t, res.Routes[0].FullLoad)
}

type recordingBackhaul struct{ calls []float64 }

func (r *recordingBackhaul) OnBackhaulOpportunity(route *domain.Route, after domain.RouteStop, free float64) {
	r.calls = append(r.calls, free)
}

func TestBuildInvokesBackhaulPolicy(t *testing.T) {
	rec := &recordingBackhaul{}
	b := testBuilder(domain.DefaultCapacityProfile())
	b.Backhaul = rec

	b.Build("SW1A", SequenceStops([]domain.Drop{
		londonDrop("d1", 0, itemOf(100, 1, 1)),
		londonDrop("d2", 1, itemOf(100, 1, 1)),
	}))

	require.Equal(t, []float64{1, 1}, rec.calls)
}

func TestBuildCapacityAndConservationRandomized(t *testing.T) {
	c := domain.DefaultCapacityProfile()
	rng := rand.New(rand.NewSource(42))

	var drops []domain.Drop
	for i := 0; i < 60; i++ {
		mass := 20 + rng.Float64()*600
		volume := 0.1 + rng.Float64()*6
		if i%17 == 0 {
			mass = 1500
		}
		qty := 1 + rng.Intn(8)
		drops = append(drops, londonDrop(fmt.Sprintf("d%02d", i), i%10, itemOf(mass/float64(qty), volume/float64(qty), qty)))
	}

	res := testBuilder(c).Build("SW1A", SequenceStops(drops))
	requirePrefixWithinCapacity(t, res.Routes, c)

	seen := make(map[string]int)
	for _, r := range res.Routes {
		for _, id := range r.DropIDs() {
			seen[id]++
		}
	}
	for _, id := range res.UnassignedDropIDs {
		seen[id]++
	}

	require.Len(t, seen, len(drops))
	for id, n := range seen {
		require.Equalf(t, 1, n, "drop %s seen %d times", id, n)
	}
	require.Contains(t, res.UnassignedDropIDs, "d00")
	require.Contains(t, res.UnassignedDropIDs, "d17")
}
