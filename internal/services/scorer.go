package services

import (
	"math"
	"route-planner-service/internal/domain"
)

// Score blends assignment rate (70%) with average drops per route (30%) into [0, 100].
func Score(totalDrops, assignedDrops int, routes []domain.Route) float64 {
	if totalDrops <= 0 {
		return 100
	}

	rate := float64(assignedDrops) / float64(totalDrops) * 100

	var efficiency float64
	if len(routes) > 0 {
		var drops int
		for _, r := range routes {
			drops += len(r.DropIDs())
		}
		efficiency = float64(drops) / float64(len(routes)) * 10
	}

	return math.Max(0, math.Min(100, rate*0.7+efficiency*0.3))
}
