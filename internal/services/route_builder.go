package services

import (
	"route-planner-service/internal/domain"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// Flat inter-stop travel allowance used by the duration budget check.
	travelAllowanceMinutes = 20.0

	backhaulFreeFraction = 0.30
	fullLoadUtilization  = 0.90

	// Absorbs float round-off when a dropoff returns the load to zero.
	loadEpsilon = 1e-9
)

// BackhaulPolicy is invoked when a dropoff leaves enough free capacity for a
// return load. Implementations may record or act on the opportunity.
type BackhaulPolicy interface {
	OnBackhaulOpportunity(route *domain.Route, after domain.RouteStop, freeFraction float64)
}

// Default policy: the route is flagged and the opportunity logged, nothing is inserted.
type FlagOnlyBackhaul struct{}

func (FlagOnlyBackhaul) OnBackhaulOpportunity(route *domain.Route, after domain.RouteStop, freeFraction float64) {
	log.Debug().
		Str("area", route.Area).
		Str("drop_id", after.DropID).
		Float64("free_fraction", freeFraction).
		Msg("backhaul opportunity")
}

// Output of one greedy pass.
type BuildResult struct {
	Routes            []domain.Route
	UnassignedDropIDs []string
}

// RouteBuilder packs an ordered stop sequence into capacity-constrained routes.
type RouteBuilder struct {
	Capacity domain.VehicleCapacityProfile
	Backhaul BackhaulPolicy
	NewID    func() string
	Now      func() time.Time
}

func NewRouteBuilder(capacity domain.VehicleCapacityProfile) *RouteBuilder {
	return &RouteBuilder{
		Capacity: capacity,
		Backhaul: FlagOnlyBackhaul{},
		NewID:    uuid.NewString,
		Now:      time.Now,
	}
}

// Running state of the route being filled.
type routeAccumulator struct {
	route   domain.Route
	mass    float64
	volume  float64
	minutes float64
	last    *domain.Location
}

func (a *routeAccumulator) empty() bool { return len(a.route.Stops) == 0 }

func (a *routeAccumulator) legMinutes(to domain.Location) float64 {
	if a.last == nil {
		return 0
	}
	return TravelMinutes(DistanceKm(*a.last, to))
}

// Build runs the greedy pass over stops, which must already be in visiting order.
//
// A stop that breaks any budget closes the current route and is retried on a
// fresh one. A stop that fails on an empty route makes its drop unassignable and
// the drop's remaining stops are skipped. A pickup also reserves room for its own
// dropoff so a drop's stops never land on different routes.
func (b *RouteBuilder) Build(area string, stops []domain.RouteStop) BuildResult {
	res := BuildResult{Routes: []domain.Route{}, UnassignedDropIDs: []string{}}
	if len(stops) == 0 {
		return res
	}

	partner := pairDropoffs(stops)
	skipped := make(map[string]struct{})
	placed := make(map[string]struct{})

	acc := b.newAccumulator(area)

	for i, stop := range stops {
		if _, skip := skipped[stop.DropID]; skip {
			continue
		}

		var reserve *domain.RouteStop
		if j, ok := partner[i]; ok {
			reserve = &stops[j]
		}

		if b.fits(acc, stop, reserve) {
			b.admit(acc, stop)
			placed[stop.DropID] = struct{}{}
			continue
		}

		if !acc.empty() {
			res.Routes = append(res.Routes, b.finalize(acc))
			acc = b.newAccumulator(area)

			if b.fits(acc, stop, reserve) {
				b.admit(acc, stop)
				placed[stop.DropID] = struct{}{}
				continue
			}
		}

		log.Warn().
			Str("area", area).
			Str("drop_id", stop.DropID).
			Str("kind", string(stop.Kind)).
			Msg("stop does not fit an empty route; drop unassigned")

		skipped[stop.DropID] = struct{}{}
		if _, ok := placed[stop.DropID]; !ok {
			res.UnassignedDropIDs = append(res.UnassignedDropIDs, stop.DropID)
		}
	}

	if !acc.empty() {
		res.Routes = append(res.Routes, b.finalize(acc))
	}

	return res
}

// Map each pickup index to the index of its drop's next dropoff.
func pairDropoffs(stops []domain.RouteStop) map[int]int {
	pending := make(map[string]int)
	partner := make(map[int]int)
	for i, s := range stops {
		switch s.Kind {
		case domain.StopPickup:
			pending[s.DropID] = i
		case domain.StopDropoff:
			if p, ok := pending[s.DropID]; ok {
				partner[p] = i
				delete(pending, s.DropID)
			}
		}
	}
	return partner
}

// fits checks every budget against the prospective totals. When reserve is set
// the stop count and duration must also leave room for that dropoff.
func (b *RouteBuilder) fits(acc *routeAccumulator, stop domain.RouteStop, reserve *domain.RouteStop) bool {
	c := b.Capacity

	mass := acc.mass + stop.MassDelta()
	volume := acc.volume + stop.VolumeDelta()
	if mass > c.MaxMassKg+loadEpsilon || mass < -loadEpsilon {
		return false
	}
	if volume > c.MaxVolumeM3+loadEpsilon || volume < -loadEpsilon {
		return false
	}

	count := len(acc.route.Stops) + 1
	if reserve != nil {
		count++
	}
	if count > c.MaxStops {
		return false
	}

	if acc.minutes+stop.OperationMinutes+travelAllowanceMinutes > c.MaxMinutes {
		return false
	}
	if reserve != nil {
		after := acc.minutes + acc.legMinutes(stop.Location) + stop.OperationMinutes
		if after+reserve.OperationMinutes+travelAllowanceMinutes > c.MaxMinutes {
			return false
		}
	}

	return true
}

func (b *RouteBuilder) admit(acc *routeAccumulator, stop domain.RouteStop) {
	acc.minutes += acc.legMinutes(stop.Location) + stop.OperationMinutes
	acc.mass += stop.MassDelta()
	acc.volume += stop.VolumeDelta()
	loc := stop.Location
	acc.last = &loc

	stop.ID = b.NewID()
	acc.route.Stops = append(acc.route.Stops, stop)

	c := b.Capacity
	switch stop.Kind {
	case domain.StopDropoff:
		free := min((c.MaxMassKg-acc.mass)/c.MaxMassKg, (c.MaxVolumeM3-acc.volume)/c.MaxVolumeM3)
		if free >= backhaulFreeFraction {
			acc.route.BackhaulEligible = true
			if b.Backhaul != nil {
				b.Backhaul.OnBackhaulOpportunity(&acc.route, stop, free)
			}
		}
	case domain.StopPickup:
		util := max(acc.mass/c.MaxMassKg, acc.volume/c.MaxVolumeM3)
		if util >= fullLoadUtilization {
			acc.route.FullLoad = true
		}
	}
}

func (b *RouteBuilder) newAccumulator(area string) *routeAccumulator {
	return &routeAccumulator{
		route: domain.Route{
			Area:   area,
			Status: domain.RouteStatusPlanned,
		},
	}
}

func (b *RouteBuilder) finalize(acc *routeAccumulator) domain.Route {
	r := acc.route
	r.ID = b.NewID()
	r.CreatedAt = b.Now().UTC()
	r.DistanceKm = RouteDistanceKm(r.Stops)
	r.DurationMinutes = DurationMinutes(r.DistanceKm, r.Stops)
	return r
}
