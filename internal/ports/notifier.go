package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event emitted after a route has been offered to a driver.
type RouteOffered struct {
	AssignmentID      string          `json:"assignment_id"`
	RouteID           string          `json:"route_id"`
	DriverID          string          `json:"driver_id"`
	StopCount         int             `json:"stop_count"`
	DropCount         int             `json:"drop_count"`
	DistanceKm        float64         `json:"distance_km"`
	EstimatedEarnings decimal.Decimal `json:"estimated_earnings"`
	ExpiresAt         time.Time       `json:"expires_at"`
}

// Port: outbound notifications. Implementations must not block on delivery.
type Notifier interface {
	NotifyRouteOffered(ctx context.Context, ev RouteOffered) error
	// Schedule expiry of a pending assignment at the given time.
	ScheduleAssignmentExpiry(ctx context.Context, assignmentID string, at time.Time) error
}
