package notify

import (
	"context"
	"route-planner-service/internal/ports"
	"time"

	"github.com/rs/zerolog/log"
)

// LogNotifier writes events to the log instead of a queue.
// Expiry is not scheduled; offers stay pending until answered.
type LogNotifier struct{}

func (LogNotifier) NotifyRouteOffered(ctx context.Context, ev ports.RouteOffered) error {
	log.Info().
		Str("assignment_id", ev.AssignmentID).
		Str("route_id", ev.RouteID).
		Str("driver_id", ev.DriverID).
		Int("stops", ev.StopCount).
		Str("earnings", ev.EstimatedEarnings.StringFixed(2)).
		Time("expires_at", ev.ExpiresAt).
		Msg("route offered")
	return nil
}

func (LogNotifier) ScheduleAssignmentExpiry(ctx context.Context, assignmentID string, at time.Time) error {
	log.Debug().
		Str("assignment_id", assignmentID).
		Time("expires_at", at).
		Msg("assignment expiry not scheduled by log notifier")
	return nil
}
