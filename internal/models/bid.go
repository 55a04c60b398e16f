// server/internal/models/bid.go
package models

import (
	"time"

	"freight-match-api-server/internal/apperr"
)

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidCancelled BidStatus = "cancelled"
)

// NonTerminalBidStatuses are the statuses that still hold a truck commitment
// and block a second bid from the same carrier on the same load.
var NonTerminalBidStatuses = []BidStatus{BidPending, BidAccepted}

type Bid struct {
	ID                   string    `bson:"_id" json:"id"`
	LoadID               string    `bson:"loadId" json:"loadId"`
	CarrierID            string    `bson:"carrierId" json:"carrierId"`
	TruckID              string    `bson:"truckId" json:"truckId"`
	Amount               float64   `bson:"amount" json:"amount"` // in MAD
	Status               BidStatus `bson:"status" json:"status"`
	ProposedPickupDate   time.Time `bson:"proposedPickupDate" json:"proposedPickupDate"`
	ProposedDeliveryDate time.Time `bson:"proposedDeliveryDate" json:"proposedDeliveryDate"`
	Notes                string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt            time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ValidateBidDates enforces pickup < delivery with pickup strictly in the
// future, relative to now.
func ValidateBidDates(pickup, delivery, now time.Time) error {
	if !pickup.Before(delivery) {
		return apperr.BadRequest("pickup date must be before delivery date")
	}
	if !pickup.After(now) {
		return apperr.BadRequest("pickup date must be in the future")
	}
	return nil
}

func (b *Bid) CanBeUpdated() error {
	if b.Status != BidPending {
		return apperr.BadRequest("only pending bids can be updated")
	}
	return nil
}

func (b *Bid) CanBeCancelled() error {
	if b.Status == BidCancelled {
		return apperr.BadRequest("bid is already cancelled")
	}
	if b.Status != BidPending {
		return apperr.BadRequest("only pending bids can be cancelled")
	}
	return nil
}
