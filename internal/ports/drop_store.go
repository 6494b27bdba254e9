package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Port: a boundary for reading drops awaiting planning.
type DropStore interface {
	// Return drops that are booked and not yet linked to a route.
	ListPlannableDrops(ctx context.Context) ([]domain.Drop, error)
}
