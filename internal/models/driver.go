// server/internal/models/driver.go
package models

import "time"

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverAssigned  DriverStatus = "assigned"
	DriverInTransit DriverStatus = "in_transit"
	DriverOffDuty   DriverStatus = "off_duty"
)

type Driver struct {
	ID        string       `bson:"_id" json:"id"`
	UserID    string       `bson:"userId" json:"userId"`
	CarrierID string       `bson:"carrierId" json:"carrierId"`
	FirstName string       `bson:"firstName" json:"firstName"`
	LastName  string       `bson:"lastName" json:"lastName"`
	Phone     string       `bson:"phone,omitempty" json:"phone,omitempty"`
	Status    DriverStatus `bson:"status" json:"status"`
	TruckID   string       `bson:"truckId,omitempty" json:"truckId,omitempty"`
	CreatedAt time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// NextDriverStatusAfterDelivery: after delivering, a driver stays assigned
// while other scheduled shipments remain for them, otherwise goes back to
// available.
func NextDriverStatusAfterDelivery(remainingScheduled int64) DriverStatus {
	if remainingScheduled > 0 {
		return DriverAssigned
	}
	return DriverAvailable
}
