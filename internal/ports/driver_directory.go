package ports

import (
	"context"
	"route-planner-service/internal/domain"
)

// Port: a boundary for looking up drivers.
type DriverDirectory interface {
	// Return the driver, or a *domain.NotFoundError.
	GetDriver(ctx context.Context, driverID string) (domain.Driver, error)
	// Return the id of the driver's planned, assigned or in-progress route, or "".
	ActiveRouteID(ctx context.Context, driverID string) (string, error)
}
