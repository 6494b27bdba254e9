package dto

import (
	"route-planner-service/internal/domain"
	"time"

	"github.com/shopspring/decimal"
)

type LocationResponse struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label,omitempty"`
}

type StopResponse struct {
	ID               string           `json:"id"`
	DropID           string           `json:"drop_id"`
	Kind             string           `json:"kind"`
	Location         LocationResponse `json:"location"`
	ItemCount        int              `json:"item_count"`
	MassKg           float64          `json:"mass_kg"`
	VolumeM3         float64          `json:"volume_m3"`
	OperationMinutes float64          `json:"operation_minutes"`
}

type RouteResponse struct {
	ID               string              `json:"id"`
	Area             string              `json:"area"`
	Status           string              `json:"status"`
	DropIDs          []string            `json:"drop_ids"`
	Stops            []StopResponse      `json:"stops"`
	DistanceKm       float64             `json:"distance_km"`
	DurationMinutes  float64             `json:"duration_minutes"`
	Value            decimal.Decimal     `json:"value"`
	DriverID         *string             `json:"driver_id"`
	BackhaulEligible bool                `json:"backhaul_eligible"`
	FullLoad         bool                `json:"full_load"`
	CreatedAt        time.Time           `json:"created_at"`
	Assignment       *AssignmentResponse `json:"assignment,omitempty"`
}

func NewRouteResponse(r domain.Route) RouteResponse {
	stops := make([]StopResponse, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, StopResponse{
			ID:     s.ID,
			DropID: s.DropID,
			Kind:   string(s.Kind),
			Location: LocationResponse{
				Lat:   s.Location.Lat,
				Lng:   s.Location.Lng,
				Label: s.Location.Label,
			},
			ItemCount:        domain.ItemCount(s.Items),
			MassKg:           domain.ManifestMassKg(s.Items),
			VolumeM3:         domain.ManifestVolumeM3(s.Items),
			OperationMinutes: s.OperationMinutes,
		})
	}

	return RouteResponse{
		ID:               r.ID,
		Area:             r.Area,
		Status:           string(r.Status),
		DropIDs:          r.DropIDs(),
		Stops:            stops,
		DistanceKm:       r.DistanceKm,
		DurationMinutes:  r.DurationMinutes,
		Value:            r.Value,
		DriverID:         r.DriverID,
		BackhaulEligible: r.BackhaulEligible,
		FullLoad:         r.FullLoad,
		CreatedAt:        r.CreatedAt,
	}
}

func NewRouteDetailResponse(d domain.RouteDetail) RouteResponse {
	res := NewRouteResponse(d.Route)
	if d.Assignment != nil {
		a := NewAssignmentResponse(*d.Assignment)
		res.Assignment = &a
	}
	return res
}
