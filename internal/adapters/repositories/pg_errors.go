package repositories

import (
	"errors"
	"route-planner-service/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgSerializationFailed = "40001"
	pgDeadlockDetected    = "40P01"
)

// mapAssignError turns storage-level races into a *domain.ConflictError.
func mapAssignError(err error, driverID string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return &domain.ConflictError{DriverID: driverID, Detail: "driver already holds an active route (" + pgErr.ConstraintName + ")"}
	case pgSerializationFailed, pgDeadlockDetected:
		return &domain.ConflictError{DriverID: driverID, Detail: "concurrent assignment: " + pgErr.Message}
	}
	return err
}
