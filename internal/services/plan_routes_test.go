package services

import (
	"context"
	"fmt"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func planningCatalog() *Catalog {
	return NewCatalog(&staticCatalogSource{entries: []ports.CatalogEntry{
		{ID: "crate", Name: "Moving Crate", MassKg: f64(50), VolumeM3: f64(0.5)},
		{ID: "safe", Name: "Gun Safe", MassKg: f64(1200), VolumeM3: f64(1)},
		{ID: "chair", Name: "Dining Chair", MassKg: f64(6), VolumeM3: f64(0.2)},
	}})
}

func bookedDrop(id string, i int, label string, itemID string, qty int) domain.Drop {
	d := londonDrop(id, i, domain.Item{ID: itemID, Quantity: qty})
	d.Pickup.Label = label
	d.QuotedPrice = decimal.NewFromInt(120)
	return d
}

func newTestPlanner(store *repositories.MemoryStore) *Planner {
	p := NewPlanner(store, store, planningCatalog(), domain.DefaultCapacityProfile())
	p.Now = func() time.Time { return time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC) }
	return p
}

func TestPlanRoutesSingleAreaFitsOneRoute(t *testing.T) {
	store := repositories.NewMemoryStore()
	store.PutDrops(
		bookedDrop("d1", 0, "SW1A 1AA", "crate", 1),
		bookedDrop("d2", 1, "SW1A 1AA", "crate", 1),
		bookedDrop("d3", 2, "SW1A 1AA", "crate", 1),
	)

	res, err := newTestPlanner(store).PlanRoutes(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Routes, 1)
	require.Empty(t, res.UnassignedDropIDs)
	require.Equal(t, 3, res.Routes[0].DropoffCount())
	require.True(t, res.Routes[0].Value.Equal(decimal.NewFromInt(360)))
	require.InDelta(t, 79.0, res.OptimizationScore, 1e-9)

	for _, id := range []string{"d1", "d2", "d3"} {
		d, ok := store.Drop(id)
		require.True(t, ok)
		require.Equal(t, domain.DropStatusRouted, d.Status)
		require.NotNil(t, d.RouteID)
		require.Equal(t, res.Routes[0].ID, *d.RouteID)
	}

	detail, err := GetRoute(context.Background(), store, res.Routes[0].ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Len(t, detail.Stops, 6)
	require.Nil(t, detail.Assignment)
}

func TestPlanRoutesOverweightDropIsUnassigned(t *testing.T) {
	store := repositories.NewMemoryStore()
	store.PutDrops(bookedDrop("heavy", 0, "SW1A 1AA", "safe", 1))

	res, err := newTestPlanner(store).PlanRoutes(context.Background())
	require.NoError(t, err)

	require.Empty(t, res.Routes)
	require.Equal(t, []string{"heavy"}, res.UnassignedDropIDs)
	require.Equal(t, 0.0, res.OptimizationScore)

	d, _ := store.Drop("heavy")
	require.Equal(t, domain.DropStatusBooked, d.Status)
}

func TestPlanRoutesUnknownItemAbortsBeforeWrite(t *testing.T) {
	store := repositories.NewMemoryStore()
	store.PutDrops(
		bookedDrop("ok", 0, "SW1A 1AA", "crate", 1),
		bookedDrop("bad", 1, "SW1A 1AA", "grand-piano", 1),
	)

	_, err := newTestPlanner(store).PlanRoutes(context.Background())

	var integrity *domain.DataIntegrityError
	require.ErrorAs(t, err, &integrity)
	require.Equal(t, "bad", integrity.Faults[0].DropID)
	require.Zero(t, store.Writes())
	require.Empty(t, store.ListRoutes())
}

func TestPlanRoutesEmptyBacklog(t *testing.T) {
	store := repositories.NewMemoryStore()

	res, err := newTestPlanner(store).PlanRoutes(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Routes)
	require.Equal(t, 100.0, res.OptimizationScore)
	require.Zero(t, store.Writes())
}

func TestPlanRoutesSkipsAlreadyRoutedDrops(t *testing.T) {
	store := repositories.NewMemoryStore()
	store.PutDrops(bookedDrop("d1", 0, "SW1A 1AA", "crate", 1))

	planner := newTestPlanner(store)
	first, err := planner.PlanRoutes(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Routes, 1)

	second, err := planner.PlanRoutes(context.Background())
	require.NoError(t, err)
	require.Empty(t, second.Routes)
	require.Zero(t, second.TotalDrops)
}

func backlog() []domain.Drop {
	areas := []string{"SW1A 1AA", "EC1A 1BB", "M1 1AE", "Unlabelled yard"}
	var drops []domain.Drop
	for i := 0; i < 40; i++ {
		item := "crate"
		qty := 1 + i%7
		if i%13 == 0 {
			item = "safe"
		}
		if i%5 == 0 {
			item, qty = "chair", 4
		}
		drops = append(drops, bookedDrop(fmt.Sprintf("d%02d", i), i%9, areas[i%len(areas)], item, qty))
	}
	return drops
}

// Reduce a result to the parts that must be reproducible across runs.
func planShape(res PlanResult) []string {
	var out []string
	for _, r := range res.Routes {
		var seq string
		for _, s := range r.Stops {
			seq += string(s.Kind[0]) + ":" + s.DropID + " "
		}
		out = append(out, r.Area+" | "+seq)
	}
	out = append(out, fmt.Sprintf("unassigned=%v score=%.6f", res.UnassignedDropIDs, res.OptimizationScore))
	return out
}

func TestPlanRoutesDeterministic(t *testing.T) {
	var shapes [][]string
	for run := 0; run < 3; run++ {
		store := repositories.NewMemoryStore()
		store.PutDrops(backlog()...)

		p := newTestPlanner(store)
		p.Parallelism = 1 + run*3

		res, err := p.Preview(context.Background())
		require.NoError(t, err)
		shapes = append(shapes, planShape(res))
		require.Zero(t, store.Writes())
	}

	require.Equal(t, shapes[0], shapes[1])
	require.Equal(t, shapes[0], shapes[2])
}

func TestPlanRoutesConservationAndCapacity(t *testing.T) {
	store := repositories.NewMemoryStore()
	drops := backlog()
	store.PutDrops(drops...)

	p := newTestPlanner(store)
	res, err := p.PlanRoutes(context.Background())
	require.NoError(t, err)

	requirePrefixWithinCapacity(t, res.Routes, p.Capacity)

	count := make(map[string]int)
	for _, r := range res.Routes {
		for _, id := range r.DropIDs() {
			count[id]++
		}
	}
	for _, id := range res.UnassignedDropIDs {
		count[id]++
	}
	require.Len(t, count, len(drops))
	for id, n := range count {
		require.Equalf(t, 1, n, "drop %s", id)
	}

	require.GreaterOrEqual(t, res.OptimizationScore, 0.0)
	require.LessOrEqual(t, res.OptimizationScore, 100.0)
	require.Len(t, store.ListRoutes(), len(res.Routes))
}
