// server/internal/models/load.go
package models

import (
	"time"

	"freight-match-api-server/internal/apperr"
)

type LoadStatus string

const (
	LoadDraft     LoadStatus = "draft"
	LoadPublished LoadStatus = "published"
	LoadAccepted  LoadStatus = "accepted"
	LoadCancelled LoadStatus = "cancelled"
	LoadExpired   LoadStatus = "expired"
	LoadInTransit LoadStatus = "in_transit"
	LoadDelivered LoadStatus = "delivered"
)

type Load struct {
	ID                string     `bson:"_id" json:"id"`
	ShipperID         string     `bson:"shipperId" json:"shipperId"`
	Origin            Location   `bson:"origin" json:"origin"`
	Destination       Location   `bson:"destination" json:"destination"`
	Weight            float64    `bson:"weight" json:"weight"`
	WeightUnit        string     `bson:"weightUnit" json:"weightUnit"`
	Dimensions        Dimensions `bson:"dimensions" json:"dimensions"`
	CargoTypes        []string   `bson:"cargoTypes" json:"cargoTypes"`
	Status            LoadStatus `bson:"status" json:"status"`
	PickupDate        time.Time  `bson:"pickupDate" json:"pickupDate"`
	DeliveryDeadline  time.Time  `bson:"deliveryDeadline" json:"deliveryDeadline"`
	Budget            float64    `bson:"budget" json:"budget"` // in MAD
	Description       string     `bson:"description,omitempty" json:"description,omitempty"`
	AcceptedBidID     string     `bson:"acceptedBidId,omitempty" json:"acceptedBidId,omitempty"`
	AcceptedBidAmount float64    `bson:"acceptedBidAmount,omitempty" json:"acceptedBidAmount,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// A load is only mutable while still in draft.
func (l *Load) CanBeUpdated() error {
	if l.Status != LoadDraft {
		return apperr.BadRequest("cannot update load with status: %s", l.Status)
	}
	return nil
}

func (l *Load) CanBeDeleted() error {
	if l.Status != LoadDraft && l.Status != LoadCancelled {
		return apperr.BadRequest("cannot delete load with status: %s", l.Status)
	}
	return nil
}

func (l *Load) CanBePublished() error {
	if l.Status != LoadDraft {
		return apperr.BadRequest("cannot publish load with status: %s", l.Status)
	}
	if l.Origin.Address == "" || l.Destination.Address == "" {
		return apperr.BadRequest("load must have valid origin and destination to be published")
	}
	if l.PickupDate.IsZero() || l.DeliveryDeadline.IsZero() {
		return apperr.BadRequest("load must have pickup date and delivery deadline to be published")
	}
	if l.Budget <= 0 {
		return apperr.BadRequest("load must have a positive budget to be published")
	}
	return nil
}

func (l *Load) CanBeCancelled() error {
	if l.Status != LoadDraft && l.Status != LoadPublished {
		return apperr.BadRequest("cannot cancel load with status: %s", l.Status)
	}
	return nil
}

func (l *Load) CanAcceptBid() error {
	if l.Status != LoadPublished {
		return apperr.BadRequest("cannot accept bid for load with status: %s", l.Status)
	}
	return nil
}
