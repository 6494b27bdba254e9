package services

import (
	"context"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/metrics"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAssignmentTTL = 30 * time.Minute

	notifyTimeout = 10 * time.Second
)

// AssignmentCoordinator offers planned routes to drivers and resolves the offers.
// The storage transaction is authoritative for every check; the pre-checks
// here only fail fast with the same typed errors.
type AssignmentCoordinator struct {
	Routes   ports.RouteStore
	Drivers  ports.DriverDirectory
	Notifier ports.Notifier
	TTL      time.Duration

	NewID func() string
	Now   func() time.Time

	inflight sync.WaitGroup
}

func NewAssignmentCoordinator(routes ports.RouteStore, drivers ports.DriverDirectory, notifier ports.Notifier) *AssignmentCoordinator {
	return &AssignmentCoordinator{
		Routes:   routes,
		Drivers:  drivers,
		Notifier: notifier,
		TTL:      DefaultAssignmentTTL,
		NewID:    uuid.NewString,
		Now:      time.Now,
	}
}

// AssignRoute binds a planned route to an active driver and notifies the driver.
//
// Errors: *domain.NotFoundError, *domain.InvalidStateError,
// *domain.DriverUnavailableError, *domain.ConflictError.
// A failed notification is logged and never undoes the assignment.
func (c *AssignmentCoordinator) AssignRoute(ctx context.Context, routeID, driverID string) (_ domain.DriverAssignment, err error) {
	defer obs.Time(ctx, "assignment.AssignRoute")(&err)
	defer func() { metrics.ObserveAssignment("assign", err) }()

	routeID = strings.TrimSpace(routeID)
	driverID = strings.TrimSpace(driverID)
	if routeID == "" {
		return domain.DriverAssignment{}, fmt.Errorf("assign route: %w", &domain.InvalidArgumentError{Field: "route_id"})
	}
	if driverID == "" {
		return domain.DriverAssignment{}, fmt.Errorf("assign route: %w", &domain.InvalidArgumentError{Field: "driver_id"})
	}

	detail, err := c.Routes.GetRoute(ctx, routeID)
	if err != nil {
		return domain.DriverAssignment{}, fmt.Errorf("assign route: get route: %w", err)
	}
	if detail == nil {
		return domain.DriverAssignment{}, &domain.NotFoundError{Entity: "route", ID: routeID}
	}

	driver, err := c.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return domain.DriverAssignment{}, fmt.Errorf("assign route: %w", err)
	}

	if detail.Status != domain.RouteStatusPlanned {
		return domain.DriverAssignment{}, &domain.InvalidStateError{
			Entity: "route", ID: routeID, State: string(detail.Status), Want: string(domain.RouteStatusPlanned),
		}
	}
	if !driver.Available() {
		return domain.DriverAssignment{}, &domain.DriverUnavailableError{DriverID: driverID, Status: driver.Status}
	}

	active, err := c.Drivers.ActiveRouteID(ctx, driverID)
	if err != nil {
		return domain.DriverAssignment{}, fmt.Errorf("assign route: active route: %w", err)
	}
	if active != "" && active != routeID {
		return domain.DriverAssignment{}, &domain.ConflictError{DriverID: driverID, ExistingRouteID: active}
	}

	now := c.Now().UTC()
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultAssignmentTTL
	}

	assignment, err := c.Routes.AssignRoute(ctx, ports.AssignParams{
		RouteID:  routeID,
		DriverID: driverID,
		Assignment: domain.DriverAssignment{
			ID:                c.NewID(),
			RouteID:           routeID,
			DriverID:          driverID,
			AssignedAt:        now,
			ExpiresAt:         now.Add(ttl),
			Outcome:           domain.OutcomePending,
			EstimatedEarnings: EstimateEarnings(detail.Route),
		},
	})
	if err != nil {
		return domain.DriverAssignment{}, fmt.Errorf("assign route: %w", err)
	}

	log.Info().
		Str("req_id", obs.RequestID(ctx)).
		Str("route_id", routeID).
		Str("driver_id", driverID).
		Str("assignment_id", assignment.ID).
		Time("expires_at", assignment.ExpiresAt).
		Msg("route assigned")

	c.dispatch(ctx, detail.Route, assignment)

	return assignment, nil
}

// dispatch notifies the driver and schedules expiry off the request path.
func (c *AssignmentCoordinator) dispatch(ctx context.Context, route domain.Route, a domain.DriverAssignment) {
	if c.Notifier == nil {
		return
	}

	ev := ports.RouteOffered{
		AssignmentID:      a.ID,
		RouteID:           a.RouteID,
		DriverID:          a.DriverID,
		StopCount:         len(route.Stops),
		DropCount:         len(route.DropIDs()),
		DistanceKm:        route.DistanceKm,
		EstimatedEarnings: a.EstimatedEarnings,
		ExpiresAt:         a.ExpiresAt,
	}

	base := context.WithoutCancel(ctx)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		nctx, cancel := context.WithTimeout(base, notifyTimeout)
		defer cancel()

		if err := c.Notifier.NotifyRouteOffered(nctx, ev); err != nil {
			metrics.NotifyFailures.WithLabelValues("route_offered").Inc()
			log.Warn().Err(err).
				Str("route_id", ev.RouteID).
				Str("driver_id", ev.DriverID).
				Msg("route offer notification failed")
		}

		if err := c.Notifier.ScheduleAssignmentExpiry(nctx, a.ID, a.ExpiresAt); err != nil {
			metrics.NotifyFailures.WithLabelValues("assignment_expiry").Inc()
			log.Warn().Err(err).
				Str("assignment_id", a.ID).
				Msg("schedule assignment expiry failed")
		}
	}()
}

// Wait blocks until in-flight notifications finish.
func (c *AssignmentCoordinator) Wait() {
	c.inflight.Wait()
}

// AcceptAssignment records the driver's acceptance of a pending, unexpired offer.
func (c *AssignmentCoordinator) AcceptAssignment(ctx context.Context, assignmentID, driverID string) (domain.DriverAssignment, error) {
	return c.resolve(ctx, "accept", assignmentID, driverID, domain.OutcomeAccepted)
}

// RejectAssignment records a refusal and releases the route for another driver.
func (c *AssignmentCoordinator) RejectAssignment(ctx context.Context, assignmentID, driverID string) (domain.DriverAssignment, error) {
	return c.resolve(ctx, "reject", assignmentID, driverID, domain.OutcomeRejected)
}

// ExpireAssignment lapses an unanswered offer once its expiry has passed.
// Offers that were already resolved are returned unchanged.
func (c *AssignmentCoordinator) ExpireAssignment(ctx context.Context, assignmentID string) (domain.DriverAssignment, error) {
	a, err := c.Routes.GetAssignment(ctx, assignmentID)
	if err != nil {
		return domain.DriverAssignment{}, fmt.Errorf("expire assignment: %w", err)
	}
	if a == nil {
		return domain.DriverAssignment{}, &domain.NotFoundError{Entity: "assignment", ID: assignmentID}
	}
	if !a.Pending() {
		return *a, nil
	}
	if now := c.Now(); !a.ExpiredAt(now) {
		return domain.DriverAssignment{}, fmt.Errorf("expire assignment: %w", &domain.InvalidStateError{
			Entity: "assignment", ID: assignmentID, State: "pending", Want: "past " + a.ExpiresAt.Format(time.RFC3339),
		})
	}

	return c.resolve(ctx, "expire", assignmentID, "", domain.OutcomeExpired)
}

func (c *AssignmentCoordinator) resolve(
	ctx context.Context,
	op string,
	assignmentID string,
	driverID string,
	outcome domain.AssignmentOutcome,
) (_ domain.DriverAssignment, err error) {
	defer obs.Time(ctx, "assignment."+op)(&err)
	defer func() { metrics.ObserveAssignment(op, err) }()

	if strings.TrimSpace(assignmentID) == "" {
		return domain.DriverAssignment{}, fmt.Errorf("%s assignment: %w", op, &domain.InvalidArgumentError{Field: "assignment_id"})
	}
	if outcome != domain.OutcomeExpired && strings.TrimSpace(driverID) == "" {
		return domain.DriverAssignment{}, fmt.Errorf("%s assignment: %w", op, &domain.InvalidArgumentError{Field: "driver_id"})
	}

	a, err := c.Routes.ResolveAssignment(ctx, ports.ResolveParams{
		AssignmentID: assignmentID,
		DriverID:     driverID,
		Outcome:      outcome,
		At:           c.Now().UTC(),
	})
	if err != nil {
		return domain.DriverAssignment{}, fmt.Errorf("%s assignment: %w", op, err)
	}

	log.Info().
		Str("assignment_id", a.ID).
		Str("route_id", a.RouteID).
		Str("driver_id", a.DriverID).
		Str("outcome", string(a.Outcome)).
		Msg("assignment resolved")

	return a, nil
}
