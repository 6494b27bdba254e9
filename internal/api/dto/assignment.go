package dto

import (
	"route-planner-service/internal/domain"
	"time"

	"github.com/shopspring/decimal"
)

type AssignRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

type RespondRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

type AssignmentResponse struct {
	ID                string          `json:"id"`
	RouteID           string          `json:"route_id"`
	DriverID          string          `json:"driver_id"`
	Outcome           string          `json:"outcome"`
	AssignedAt        time.Time       `json:"assigned_at"`
	ExpiresAt         time.Time       `json:"expires_at"`
	RespondedAt       *time.Time      `json:"responded_at"`
	EstimatedEarnings decimal.Decimal `json:"estimated_earnings"`
}

func NewAssignmentResponse(a domain.DriverAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                a.ID,
		RouteID:           a.RouteID,
		DriverID:          a.DriverID,
		Outcome:           string(a.Outcome),
		AssignedAt:        a.AssignedAt,
		ExpiresAt:         a.ExpiresAt,
		RespondedAt:       a.RespondedAt,
		EstimatedEarnings: a.EstimatedEarnings,
	}
}
