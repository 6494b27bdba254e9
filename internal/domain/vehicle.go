package domain

import "fmt"

// Capacity limits applied to every route of a planning run.
type VehicleCapacityProfile struct {
	MaxMassKg   float64
	MaxVolumeM3 float64
	MaxStops    int
	MaxMinutes  float64
}

// Default profile: 1000 kg, 10 m3, 15 stops, 12 h.
func DefaultCapacityProfile() VehicleCapacityProfile {
	return VehicleCapacityProfile{
		MaxMassKg:   1000,
		MaxVolumeM3: 10,
		MaxStops:    15,
		MaxMinutes:  12 * 60,
	}
}

func (p VehicleCapacityProfile) Validate() error {
	if p.MaxMassKg <= 0 {
		return fmt.Errorf("capacity profile: max mass must be positive (got %v)", p.MaxMassKg)
	}
	if p.MaxVolumeM3 <= 0 {
		return fmt.Errorf("capacity profile: max volume must be positive (got %v)", p.MaxVolumeM3)
	}
	if p.MaxStops < 2 {
		return fmt.Errorf("capacity profile: max stops must be at least 2 (got %d)", p.MaxStops)
	}
	if p.MaxMinutes <= 0 {
		return fmt.Errorf("capacity profile: max minutes must be positive (got %v)", p.MaxMinutes)
	}
	return nil
}
