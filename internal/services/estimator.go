package services

import (
	"math"
	"route-planner-service/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// Travel time model: two minutes per kilometre.
	minutesPerKm = 2.0

	minStopMinutes     = 15.0
	minutesPerItemUnit = 3.0
)

// Great-circle distance between two locations in kilometres.
func DistanceKm(a, b domain.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func TravelMinutes(distanceKm float64) float64 {
	return distanceKm * minutesPerKm
}

// Handling time at a stop: three minutes per unit with a fifteen minute floor.
func StopOperationMinutes(itemCount int) float64 {
	return math.Max(minStopMinutes, float64(itemCount)*minutesPerItemUnit)
}

// Sum of consecutive leg distances across the stop sequence.
func RouteDistanceKm(stops []domain.RouteStop) float64 {
	var total float64
	for i := 1; i < len(stops); i++ {
		total += DistanceKm(stops[i-1].Location, stops[i].Location)
	}
	return total
}

// Estimated route duration: travel time for the distance plus every stop's handling time.
func DurationMinutes(distanceKm float64, stops []domain.RouteStop) float64 {
	total := TravelMinutes(distanceKm)
	for _, s := range stops {
		total += s.OperationMinutes
	}
	return total
}
