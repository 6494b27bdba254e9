package services

import (
	"context"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/metrics"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Outcome of one planning run.
type PlanResult struct {
	Routes            []domain.Route
	UnassignedDropIDs []string
	OptimizationScore float64
	TotalDrops        int
}

// Planner runs catalog validation, grouping, route building and scoring over
// the current backlog of plannable drops.
type Planner struct {
	Drops    ports.DropStore
	Routes   ports.RouteStore
	Catalog  *Catalog
	Capacity domain.VehicleCapacityProfile
	Backhaul BackhaulPolicy

	// Maximum number of area groups built concurrently.
	Parallelism int

	NewID func() string
	Now   func() time.Time
}

func NewPlanner(drops ports.DropStore, routes ports.RouteStore, catalog *Catalog, capacity domain.VehicleCapacityProfile) *Planner {
	return &Planner{
		Drops:       drops,
		Routes:      routes,
		Catalog:     catalog,
		Capacity:    capacity,
		Backhaul:    FlagOnlyBackhaul{},
		Parallelism: 4,
		NewID:       uuid.NewString,
		Now:         time.Now,
	}
}

// PlanRoutes plans every booked, unrouted drop and persists the resulting routes.
// A data-integrity fault aborts the run before anything is written.
func (p *Planner) PlanRoutes(ctx context.Context) (PlanResult, error) {
	return p.run(ctx, true)
}

// Preview runs the same pipeline without persisting routes.
func (p *Planner) Preview(ctx context.Context) (PlanResult, error) {
	return p.run(ctx, false)
}

func (p *Planner) run(ctx context.Context, persist bool) (_ PlanResult, err error) {
	defer obs.Time(ctx, "planner.PlanRoutes")(&err)
	defer func() { metrics.ObservePlanRun(err) }()

	if p.Drops == nil || p.Catalog == nil {
		return PlanResult{}, errors.New("plan routes: planner is missing a drop store or catalog")
	}
	if persist && p.Routes == nil {
		return PlanResult{}, errors.New("plan routes: route store is nil")
	}
	if err := p.Capacity.Validate(); err != nil {
		return PlanResult{}, fmt.Errorf("plan routes: %w", err)
	}

	drops, err := p.Drops.ListPlannableDrops(ctx)
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan routes: list drops: %w", err)
	}

	enriched, err := p.Catalog.EnrichDrops(ctx, drops)
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan routes: %w", err)
	}

	groups := GroupDrops(enriched)
	keys := SortedAreaKeys(groups)

	results, err := p.buildGroups(ctx, keys, groups)
	if err != nil {
		return PlanResult{}, fmt.Errorf("plan routes: build: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(enriched))
	for _, d := range enriched {
		prices[d.ID] = d.QuotedPrice
	}

	res := PlanResult{
		Routes:            []domain.Route{},
		UnassignedDropIDs: []string{},
		TotalDrops:        len(enriched),
	}
	for _, r := range results {
		for _, route := range r.Routes {
			route.Value = decimal.Zero
			for _, id := range route.DropIDs() {
				route.Value = route.Value.Add(prices[id])
			}
			res.Routes = append(res.Routes, route)
		}
		res.UnassignedDropIDs = append(res.UnassignedDropIDs, r.UnassignedDropIDs...)
	}

	if persist && len(res.Routes) > 0 {
		if err := p.Routes.SavePlan(ctx, res.Routes); err != nil {
			return PlanResult{}, fmt.Errorf("plan routes: save plan: %w", err)
		}
	}

	assigned := res.TotalDrops - len(res.UnassignedDropIDs)
	res.OptimizationScore = Score(res.TotalDrops, assigned, res.Routes)
	metrics.ObservePlanResult(len(res.Routes), len(res.UnassignedDropIDs), res.OptimizationScore)

	log.Info().
		Str("req_id", obs.RequestID(ctx)).
		Int("drops", res.TotalDrops).
		Int("areas", len(keys)).
		Int("routes", len(res.Routes)).
		Int("unassigned", len(res.UnassignedDropIDs)).
		Float64("score", res.OptimizationScore).
		Bool("persisted", persist).
		Msg("planning run complete")

	return res, nil
}

// buildGroups builds each area group on its own goroutine. Results are indexed
// by the sorted key order so output does not depend on scheduling.
func (p *Planner) buildGroups(ctx context.Context, keys []string, groups map[string][]domain.Drop) ([]BuildResult, error) {
	results := make([]BuildResult, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	if p.Parallelism > 0 {
		g.SetLimit(p.Parallelism)
	}

	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := p.builder()
			results[i] = b.Build(key, SequenceStops(groups[key]))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Planner) builder() *RouteBuilder {
	b := NewRouteBuilder(p.Capacity)
	if p.Backhaul != nil {
		b.Backhaul = p.Backhaul
	}
	if p.NewID != nil {
		b.NewID = p.NewID
	}
	if p.Now != nil {
		b.Now = p.Now
	}
	return b
}

// GetRoute returns the stored route with its stops and latest assignment.
// A missing route yields (nil, nil).
func GetRoute(ctx context.Context, routes ports.RouteStore, routeID string) (*domain.RouteDetail, error) {
	if routeID == "" {
		return nil, errors.New("get route: route id must not be empty")
	}
	detail, err := routes.GetRoute(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	return detail, nil
}
