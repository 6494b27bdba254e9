package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AssignmentOutcome string

const (
	OutcomePending  AssignmentOutcome = "pending"
	OutcomeAccepted AssignmentOutcome = "accepted"
	OutcomeExpired  AssignmentOutcome = "expired"
	OutcomeRejected AssignmentOutcome = "rejected"
)

// Represents an offer of a route to a driver.
// A pending assignment lapses at ExpiresAt unless the driver responds.
type DriverAssignment struct {
	ID                string
	RouteID           string
	DriverID          string
	AssignedAt        time.Time
	ExpiresAt         time.Time
	Outcome           AssignmentOutcome
	RespondedAt       *time.Time
	EstimatedEarnings decimal.Decimal
}

func (a DriverAssignment) Pending() bool { return a.Outcome == OutcomePending }

func (a DriverAssignment) ExpiredAt(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
