package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is matching. Typed errors below unwrap to them.
var (
	ErrDataIntegrity     = errors.New("data integrity fault")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrDriverUnavailable = errors.New("driver unavailable")
	ErrConflict          = errors.New("conflict")
	ErrInvalidArgument   = errors.New("invalid argument")
)

// One item that could not be enriched from the catalog.
type ItemFault struct {
	DropID string
	ItemID string
	Name   string
	Reason string
}

func (f ItemFault) String() string {
	ref := f.ItemID
	if ref == "" {
		ref = f.Name
	}
	if f.DropID != "" {
		return fmt.Sprintf("drop=%s item=%q: %s", f.DropID, ref, f.Reason)
	}
	return fmt.Sprintf("item=%q: %s", ref, f.Reason)
}

// Raised when catalog data or a manifest cannot produce an authoritative mass/volume.
// Planning aborts before any route is produced or persisted.
type DataIntegrityError struct {
	Op     string
	Faults []ItemFault
}

func (e *DataIntegrityError) Error() string {
	parts := make([]string, 0, len(e.Faults))
	for _, f := range e.Faults {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("%s: data integrity fault (%d): %s", e.Op, len(e.Faults), strings.Join(parts, "; "))
}

func (e *DataIntegrityError) Unwrap() error { return ErrDataIntegrity }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type InvalidStateError struct {
	Entity string
	ID     string
	State  string
	Want   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %q is %s, want %s", e.Entity, e.ID, e.State, e.Want)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

type DriverUnavailableError struct {
	DriverID string
	Status   DriverStatus
}

func (e *DriverUnavailableError) Error() string {
	return fmt.Sprintf("driver %q is not available (status=%s)", e.DriverID, e.Status)
}

func (e *DriverUnavailableError) Unwrap() error { return ErrDriverUnavailable }

// Raised when the driver already holds an active route, or when a concurrent
// writer won a race on the same route or drops.
type ConflictError struct {
	DriverID        string
	ExistingRouteID string
	Detail          string
}

func (e *ConflictError) Error() string {
	if e.ExistingRouteID != "" {
		return fmt.Sprintf("driver %q already holds active route %q", e.DriverID, e.ExistingRouteID)
	}
	if e.Detail != "" {
		return "conflict: " + e.Detail
	}
	return fmt.Sprintf("driver %q already holds an active route", e.DriverID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Raised when a required identifier is empty or blank after trimming.
type InvalidArgumentError struct {
	Field string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }
