package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DropStatus string

const (
	DropStatusBooked    DropStatus = "booked"
	DropStatusRouted    DropStatus = "routed"
	DropStatusCompleted DropStatus = "completed"
	DropStatusCancelled DropStatus = "cancelled"
)

// Represents a customer job: collect the manifest at Pickup and deliver it to Dropoff.
// A drop is plannable while it is booked and not yet linked to a route.
type Drop struct {
	ID          string
	Status      DropStatus
	Pickup      Location
	Dropoff     Location
	Items       []Item
	WindowStart time.Time
	WindowEnd   time.Time
	QuotedPrice decimal.Decimal
	RouteID     *string
}

func (d Drop) Plannable() bool {
	return d.Status == DropStatusBooked && d.RouteID == nil
}

func (d Drop) ItemCount() int { return ItemCount(d.Items) }
func (d Drop) TotalMassKg() float64 { return ManifestMassKg(d.Items) }
func (d Drop) TotalVolumeM3() float64 { return ManifestVolumeM3(d.Items) }
