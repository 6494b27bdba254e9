package ports

import (
	"context"
	"route-planner-service/internal/domain"
	"time"
)

// Input for an atomic route-to-driver assignment.
type AssignParams struct {
	RouteID    string
	DriverID   string
	Assignment domain.DriverAssignment
}

// Input for resolving a pending assignment.
type ResolveParams struct {
	AssignmentID string
	// Empty DriverID skips the ownership check (system-driven expiry).
	DriverID string
	Outcome  domain.AssignmentOutcome
	At       time.Time
}

// Port: a boundary for persisting routes and their assignments.
type RouteStore interface {
	// Persist all routes of a run and link their drops in one transaction.
	SavePlan(ctx context.Context, routes []domain.Route) error
	// Return the route with its latest assignment. A missing route yields (nil, nil).
	GetRoute(ctx context.Context, routeID string) (*domain.RouteDetail, error)
	// Atomically check route state, driver availability and conflicts, then
	// mark the route assigned and record the assignment.
	AssignRoute(ctx context.Context, p AssignParams) (domain.DriverAssignment, error)
	// Atomically move a pending assignment to accepted, rejected or expired.
	// Rejected and expired assignments release the route back to planned.
	ResolveAssignment(ctx context.Context, p ResolveParams) (domain.DriverAssignment, error)
	// Return the assignment, or (nil, nil) when it does not exist.
	GetAssignment(ctx context.Context, assignmentID string) (*domain.DriverAssignment, error)
}
