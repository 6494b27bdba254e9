package services

import (
	"route-planner-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAreaKey(t *testing.T) {
	cases := []struct {
		name string
		loc  domain.Location
		want string
	}{
		{"london postcode", domain.Location{Label: "10 Downing Street, London SW1A 2AA"}, "SW1A"},
		{"single letter area", domain.Location{Label: "Piccadilly, Manchester M1 1AE"}, "M1"},
		{"lower case label", domain.Location{Label: "flat 3, ec1a 1bb"}, "EC1A"},
		{"grid fallback", domain.Location{Lat: 51.5074, Lng: -0.1278, Label: "Trafalgar Square"}, "AREA_515_-2"},
		{"grid fallback empty label", domain.Location{Lat: 53.48, Lng: 2.24}, "AREA_534_22"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, AreaKey(tc.loc))
		})
	}
}

func TestGroupDropsOrdering(t *testing.T) {
	nine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pickup := domain.Location{Lat: 51.5, Lng: -0.1, Label: "SW1A 1AA"}

	heavy := []domain.Item{{ID: "piano", Quantity: 1, MassKg: f64(200), VolumeM3: f64(1.5)}}
	light := []domain.Item{{ID: "box", Quantity: 1, MassKg: f64(5), VolumeM3: f64(0.05)}}

	drops := []domain.Drop{
		{ID: "late", Pickup: pickup, WindowStart: nine.Add(2 * time.Hour), Items: light},
		{ID: "heavy", Pickup: pickup, WindowStart: nine, Items: heavy},
		{ID: "light-b", Pickup: pickup, WindowStart: nine, Items: light},
		{ID: "light-a", Pickup: pickup, WindowStart: nine, Items: light},
		{ID: "other-area", Pickup: domain.Location{Label: "M1 1AE"}, WindowStart: nine, Items: light},
	}

	groups := GroupDrops(drops)
	require.Equal(t, []string{"M1", "SW1A"}, SortedAreaKeys(groups))

	var ids []string
	for _, d := range groups["SW1A"] {
		ids = append(ids, d.ID)
	}
	require.Equal(t, []string{"light-a", "light-b", "heavy", "late"}, ids)
}

func TestSequenceStops(t *testing.T) {
	items := []domain.Item{{ID: "box", Quantity: 6, MassKg: f64(5), VolumeM3: f64(0.05)}}
	drops := []domain.Drop{
		{ID: "d1", Pickup: domain.Location{Label: "p1"}, Dropoff: domain.Location{Label: "x1"}, Items: items},
		{ID: "d2", Pickup: domain.Location{Label: "p2"}, Dropoff: domain.Location{Label: "x2"}},
	}

	stops := SequenceStops(drops)
	require.Len(t, stops, 4)

	require.Equal(t, domain.StopPickup, stops[0].Kind)
	require.Equal(t, "p1", stops[0].Location.Label)
	require.Equal(t, domain.StopDropoff, stops[1].Kind)
	require.Equal(t, "x1", stops[1].Location.Label)
	require.Equal(t, 18.0, stops[0].OperationMinutes)
	require.Equal(t, "d2", stops[2].DropID)
	require.Equal(t, 15.0, stops[3].OperationMinutes)
}
