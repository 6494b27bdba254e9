package repositories

import (
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapAssignError(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_routes_one_active_per_driver"})

	err := mapAssignError(unique, "drv-1")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "drv-1", conflict.DriverID)
	require.Contains(t, err.Error(), "idx_routes_one_active_per_driver")

	require.ErrorIs(t, mapAssignError(&pgconn.PgError{Code: "40P01"}, "drv-1"), domain.ErrConflict)

	other := errors.New("connection reset")
	require.Same(t, other, mapAssignError(other, "drv-1"))

	fk := &pgconn.PgError{Code: "23503"}
	require.Same(t, error(fk), mapAssignError(fk, "drv-1"))
}
