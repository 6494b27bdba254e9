package repositories

import (
	"context"
	"route-planner-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func plannedRoute(id string, dropIDs ...string) domain.Route {
	r := domain.Route{ID: id, Status: domain.RouteStatusPlanned}
	for _, d := range dropIDs {
		r.Stops = append(r.Stops,
			domain.RouteStop{ID: id + "-" + d + "-p", DropID: d, Kind: domain.StopPickup},
			domain.RouteStop{ID: id + "-" + d + "-d", DropID: d, Kind: domain.StopDropoff},
		)
	}
	return r
}

func TestMemoryStoreSavePlanLinksDrops(t *testing.T) {
	s := NewMemoryStore()
	s.PutDrops(
		domain.Drop{ID: "a", Status: domain.DropStatusBooked},
		domain.Drop{ID: "b", Status: domain.DropStatusBooked},
		domain.Drop{ID: "c", Status: domain.DropStatusCancelled},
	)

	drops, err := s.ListPlannableDrops(context.Background())
	require.NoError(t, err)
	require.Len(t, drops, 2)

	require.NoError(t, s.SavePlan(context.Background(), []domain.Route{plannedRoute("r1", "a", "b")}))

	a, _ := s.Drop("a")
	require.Equal(t, domain.DropStatusRouted, a.Status)
	require.Equal(t, "r1", *a.RouteID)

	drops, err = s.ListPlannableDrops(context.Background())
	require.NoError(t, err)
	require.Empty(t, drops)
}

func TestMemoryStoreSavePlanIsAllOrNothing(t *testing.T) {
	s := NewMemoryStore()
	s.PutDrops(domain.Drop{ID: "a", Status: domain.DropStatusBooked})
	require.NoError(t, s.SavePlan(context.Background(), []domain.Route{plannedRoute("r1", "a")}))

	s.PutDrops(domain.Drop{ID: "b", Status: domain.DropStatusBooked})
	err := s.SavePlan(context.Background(), []domain.Route{
		plannedRoute("r2", "b"),
		plannedRoute("r3", "a"),
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	b, _ := s.Drop("b")
	require.Equal(t, domain.DropStatusBooked, b.Status)
	require.Len(t, s.ListRoutes(), 1)
	require.Equal(t, 1, s.Writes())

	err = s.SavePlan(context.Background(), []domain.Route{plannedRoute("r4", "missing")})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStoreGetRouteMissing(t *testing.T) {
	s := NewMemoryStore()
	detail, err := s.GetRoute(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, detail)

	a, err := s.GetAssignment(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, a)
}
