package metrics

import (
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestResultLabel(t *testing.T) {
	require.Equal(t, "ok", resultLabel(nil))
	require.Equal(t, "conflict", resultLabel(fmt.Errorf("assign: %w", &domain.ConflictError{DriverID: "d"})))
	require.Equal(t, "data_integrity", resultLabel(&domain.DataIntegrityError{Op: "x"}))
	require.Equal(t, "invalid_argument", resultLabel(&domain.InvalidArgumentError{Field: "driver_id"}))
	require.Equal(t, "error", resultLabel(errors.New("boom")))
}

func TestObserveAssignment(t *testing.T) {
	before := testutil.ToFloat64(assignmentsTotal.WithLabelValues("assign", "not_found"))

	ObserveAssignment("assign", &domain.NotFoundError{Entity: "route", ID: "r1"})

	require.Equal(t, before+1, testutil.ToFloat64(assignmentsTotal.WithLabelValues("assign", "not_found")))
}
