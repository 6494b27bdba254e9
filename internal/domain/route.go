package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type StopKind string

const (
	StopPickup  StopKind = "pickup"
	StopDropoff StopKind = "dropoff"
)

type RouteStatus string

const (
	RouteStatusPlanned    RouteStatus = "planned"
	RouteStatusAssigned   RouteStatus = "assigned"
	RouteStatusInProgress RouteStatus = "in_progress"
	RouteStatusCompleted  RouteStatus = "completed"
	RouteStatusCancelled  RouteStatus = "cancelled"
)

// Statuses that count against the one-active-route-per-driver rule.
func (s RouteStatus) Active() bool {
	switch s {
	case RouteStatusPlanned, RouteStatusAssigned, RouteStatusInProgress:
		return true
	}
	return false
}

// Represents a single stop in a route.
// A pickup loads Items onto the vehicle, a dropoff unloads them.
// Both stops of a drop carry the same manifest.
type RouteStop struct {
	ID               string
	DropID           string
	Kind             StopKind
	Location         Location
	Items            []Item
	OperationMinutes float64
}

// Signed mass change this stop applies to the vehicle load.
func (s RouteStop) MassDelta() float64 {
	m := ManifestMassKg(s.Items)
	if s.Kind == StopDropoff {
		return -m
	}
	return m
}

// Signed volume change this stop applies to the vehicle load.
func (s RouteStop) VolumeDelta() float64 {
	v := ManifestVolumeM3(s.Items)
	if s.Kind == StopDropoff {
		return -v
	}
	return v
}

// Represents one planned vehicle route.
// DistanceKm and DurationMinutes are estimates from the haversine model.
type Route struct {
	ID               string
	Area             string
	Status           RouteStatus
	Stops            []RouteStop
	DistanceKm       float64
	DurationMinutes  float64
	Value            decimal.Decimal
	DriverID         *string
	VehicleID        *string
	BackhaulEligible bool
	FullLoad         bool
	CreatedAt        time.Time
}

// Distinct drop ids served by the route, in first-seen order.
func (r Route) DropIDs() []string {
	seen := make(map[string]struct{}, len(r.Stops))
	out := make([]string, 0, len(r.Stops)/2+1)
	for _, s := range r.Stops {
		if _, ok := seen[s.DropID]; ok {
			continue
		}
		seen[s.DropID] = struct{}{}
		out = append(out, s.DropID)
	}
	return out
}

func (r Route) DropoffCount() int {
	n := 0
	for _, s := range r.Stops {
		if s.Kind == StopDropoff {
			n++
		}
	}
	return n
}

// Read model for a stored route with its current assignment, if any.
type RouteDetail struct {
	Route
	Assignment *DriverAssignment
}
