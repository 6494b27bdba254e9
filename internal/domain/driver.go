package domain

type DriverStatus string

const (
	DriverStatusActive    DriverStatus = "active"
	DriverStatusInactive  DriverStatus = "inactive"
	DriverStatusSuspended DriverStatus = "suspended"
)

// Represents a driver as seen by the assignment coordinator.
type Driver struct {
	ID     string
	Name   string
	Status DriverStatus
}

func (d Driver) Available() bool { return d.Status == DriverStatusActive }
