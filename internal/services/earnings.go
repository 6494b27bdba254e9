package services

import (
	"math"
	"route-planner-service/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	kmToMiles       = 0.621371
	pencePerMile    = 150
	driverShare     = 0.85
	multiDropBonus2 = 1500
	multiDropBonus4 = 3000
	multiDropBonus7 = 5000
)

// EstimateEarnings returns the driver's estimated pay for a route in pounds.
// Mileage at 150p/mile plus a multi-drop bonus, less a 15% platform fee.
func EstimateEarnings(route domain.Route) decimal.Decimal {
	miles := route.DistanceKm * kmToMiles
	pence := math.Floor(miles * pencePerMile)

	switch drops := len(route.DropIDs()); {
	case drops >= 7:
		pence += multiDropBonus7
	case drops >= 4:
		pence += multiDropBonus4
	case drops >= 2:
		pence += multiDropBonus2
	}

	pence = math.Floor(pence * driverShare)
	return decimal.NewFromFloat(pence).Div(decimal.NewFromInt(100))
}
