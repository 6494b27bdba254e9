package notify

import "time"

const (
	TaskRouteOffered     = "route:offered"
	TaskAssignmentExpire = "assignment:expire"

	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Payload of an assignment:expire task.
type PayloadAssignmentExpire struct {
	AssignmentID string    `json:"assignment_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Redis pub/sub channel carrying offers for one driver.
func OffersChannel(driverID string) string {
	return "driver:" + driverID + ":offers"
}
