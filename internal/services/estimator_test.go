package services

import (
	"route-planner-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	london := domain.Location{Lat: 51.5074, Lng: -0.1278}
	manchester := domain.Location{Lat: 53.4808, Lng: -2.2426}

	require.InDelta(t, 262.0, DistanceKm(london, manchester), 2.0)
	require.InDelta(t, DistanceKm(london, manchester), DistanceKm(manchester, london), 1e-9)
	require.Zero(t, DistanceKm(london, london))
}

func TestDistanceKmOneDegreeEast(t *testing.T) {
	london := domain.Location{Lat: 51.5074, Lng: -0.1278}
	east := domain.Location{Lat: 51.5074, Lng: 0.8722}

	d := DistanceKm(london, east)
	require.InDelta(t, 69.2, d, 0.5)
	require.Equal(t, d, DistanceKm(london, east))
	require.InDelta(t, 2*d, TravelMinutes(d), 1e-9)
}

func TestStopOperationMinutes(t *testing.T) {
	require.Equal(t, 15.0, StopOperationMinutes(0))
	require.Equal(t, 15.0, StopOperationMinutes(5))
	require.Equal(t, 18.0, StopOperationMinutes(6))
	require.Equal(t, 60.0, StopOperationMinutes(20))
}

func TestDurationMinutes(t *testing.T) {
	stops := []domain.RouteStop{
		{OperationMinutes: 15},
		{OperationMinutes: 30},
	}

	require.InDelta(t, 65.0, DurationMinutes(10, stops), 1e-9)
	require.Zero(t, DurationMinutes(0, nil))
}

func TestRouteDistanceKm(t *testing.T) {
	a := domain.Location{Lat: 51.50, Lng: -0.10}
	b := domain.Location{Lat: 51.51, Lng: -0.10}
	c := domain.Location{Lat: 51.52, Lng: -0.10}

	stops := []domain.RouteStop{{Location: a}, {Location: b}, {Location: c}}

	require.InDelta(t, DistanceKm(a, c), RouteDistanceKm(stops), 1e-6)
	require.Zero(t, RouteDistanceKm(stops[:1]))
}
