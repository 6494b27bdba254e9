package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocationValid(t *testing.T) {
	require.True(t, Location{Lat: 51.5, Lng: -0.12}.Valid())
	require.True(t, Location{Lat: -90, Lng: 180}.Valid())
	require.False(t, Location{Lat: 90.1, Lng: 0}.Valid())
	require.False(t, Location{Lat: 0, Lng: -180.5}.Valid())
	require.False(t, Location{Lat: math.NaN(), Lng: 0}.Valid())
}
