package services

import (
	"route-planner-service/internal/domain"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEstimateEarnings(t *testing.T) {
	cases := []struct {
		name  string
		km    float64
		drops []string
		want  string
	}{
		// 10 km = 6.21371 mi -> 932p -> 792p.
		{"single drop", 10, []string{"a"}, "7.92"},
		// 932 + 1500 = 2432 -> 2067p.
		{"two drops", 10, []string{"a", "b"}, "20.67"},
		// 0 + 3000 -> 2550p.
		{"four drops no distance", 0, []string{"a", "b", "c", "d"}, "25.5"},
		// 0 + 5000 -> 4250p.
		{"seven drops", 0, []string{"a", "b", "c", "d", "e", "f", "g"}, "42.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := routeWithDrops(tc.drops...)
			r.DistanceKm = tc.km
			got := EstimateEarnings(r)
			require.Truef(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}

	require.True(t, EstimateEarnings(domain.Route{}).IsZero())
}
