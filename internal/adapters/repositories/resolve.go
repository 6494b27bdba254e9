package repositories

import (
	"route-planner-service/internal/domain"
	"route-planner-service/internal/ports"
)

// checkResolvable applies the pending-only transition rules shared by every store.
func checkResolvable(a domain.DriverAssignment, p ports.ResolveParams) error {
	if !a.Pending() {
		return &domain.InvalidStateError{
			Entity: "assignment", ID: a.ID, State: string(a.Outcome), Want: string(domain.OutcomePending),
		}
	}

	switch p.Outcome {
	case domain.OutcomeAccepted:
		if a.ExpiredAt(p.At) {
			return &domain.InvalidStateError{
				Entity: "assignment", ID: a.ID, State: string(domain.OutcomeExpired), Want: string(domain.OutcomePending),
			}
		}
	case domain.OutcomeExpired:
		if !a.ExpiredAt(p.At) {
			return &domain.InvalidStateError{
				Entity: "assignment", ID: a.ID, State: string(domain.OutcomePending), Want: "past expiry",
			}
		}
	case domain.OutcomeRejected:
	default:
		return &domain.InvalidStateError{
			Entity: "assignment", ID: a.ID, State: string(a.Outcome), Want: string(p.Outcome),
		}
	}

	return nil
}
