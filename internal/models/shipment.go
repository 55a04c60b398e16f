// server/internal/models/shipment.go
package models

import (
	"time"

	"freight-match-api-server/internal/apperr"
)

type ShipmentStatus string

const (
	ShipmentScheduled ShipmentStatus = "scheduled"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentDelayed   ShipmentStatus = "delayed"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

// A Shipment is created exactly once, by accepting a bid. It references the
// load (1:1), the winning bid (1:1), and the carrier/truck copied from that
// bid; the driver is assigned later.
type Shipment struct {
	ID                    string         `bson:"_id" json:"id"`
	LoadID                string         `bson:"loadId" json:"loadId"`
	BidID                 string         `bson:"bidId" json:"bidId"`
	CarrierID             string         `bson:"carrierId" json:"carrierId"`
	TruckID               string         `bson:"truckId" json:"truckId"`
	DriverID              string         `bson:"driverId,omitempty" json:"driverId,omitempty"`
	Status                ShipmentStatus `bson:"status" json:"status"`
	StartDate             time.Time      `bson:"startDate" json:"startDate"`
	EstimatedDeliveryDate time.Time      `bson:"estimatedDeliveryDate" json:"estimatedDeliveryDate"`
	ActualStartDate       *time.Time     `bson:"actualStartDate,omitempty" json:"actualStartDate,omitempty"`
	ActualDeliveryDate    *time.Time     `bson:"actualDeliveryDate,omitempty" json:"actualDeliveryDate,omitempty"`
	CurrentLocation       *GeoPoint      `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	CreatedAt             time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time      `bson:"updatedAt" json:"updatedAt"`
}

func (s *Shipment) IsTerminal() bool {
	return s.Status == ShipmentDelivered || s.Status == ShipmentCancelled
}

func (s *Shipment) CanBeStarted() error {
	if s.Status != ShipmentScheduled {
		return apperr.BadRequest("shipment must be in scheduled status to start, current status: %s", s.Status)
	}
	return nil
}

func (s *Shipment) CanBeDelivered() error {
	switch s.Status {
	case ShipmentScheduled, ShipmentInTransit, ShipmentDelayed:
		return nil
	}
	return apperr.BadRequest("cannot mark shipment as delivered from current status: %s", s.Status)
}

func (s *Shipment) CanBeCancelled() error {
	if s.IsTerminal() {
		return apperr.BadRequest("cannot cancel shipment with status: %s", s.Status)
	}
	return nil
}

func (s *Shipment) CanAssignDriver() error {
	if s.Status != ShipmentScheduled {
		return apperr.BadRequest("driver can only be assigned while the shipment is scheduled, current status: %s", s.Status)
	}
	return nil
}

// IsDelayCandidate reports whether the delay sweeper should flip this
// shipment at the given instant. Delivered shipments are excluded twice:
// by status and by the actualDeliveryDate guard, so a concurrent delivery
// cannot be overwritten.
func (s *Shipment) IsDelayCandidate(now time.Time) bool {
	if s.Status == ShipmentDelivered || s.Status == ShipmentCancelled || s.Status == ShipmentDelayed {
		return false
	}
	if s.ActualDeliveryDate != nil {
		return false
	}
	return s.EstimatedDeliveryDate.Before(now)
}
