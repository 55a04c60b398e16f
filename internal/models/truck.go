// server/internal/models/truck.go
package models

import "time"

type TruckStatus string

const (
	TruckAvailable     TruckStatus = "available"
	TruckInMaintenance TruckStatus = "in_maintenance"
	TruckOutOfService  TruckStatus = "out_of_service"
)

// Commitment is a reserved half-open time window [Start, End) on a truck's
// schedule, tied to the bid that created it.
type Commitment struct {
	Start  time.Time `bson:"start" json:"start"`
	End    time.Time `bson:"end" json:"end"`
	LoadID string    `bson:"loadId" json:"loadId"`
	BidID  string    `bson:"bidId" json:"bidId"`
}

type Truck struct {
	ID              string         `bson:"_id" json:"id"`
	CarrierID       string         `bson:"carrierId" json:"carrierId"`
	LicensePlate    string         `bson:"licensePlate" json:"licensePlate"`
	Type            string         `bson:"type" json:"type"`
	Capacity        float64        `bson:"capacity" json:"capacity"` // max cargo weight in tons
	Status          TruckStatus    `bson:"status" json:"status"`
	CurrentDriverID string         `bson:"currentDriverId,omitempty" json:"currentDriverId,omitempty"`
	CurrentLocation *GeoPoint      `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	Commitments     []Commitment   `bson:"commitments" json:"commitments"`
	ScheduleVersion int64          `bson:"scheduleVersion" json:"-"`
	Photos          []MediaPointer `bson:"photos,omitempty" json:"photos,omitempty"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// AcceptsCommitments reports whether the truck may take new schedule
// commitments at all; a truck in maintenance or out of service rejects every
// interval regardless of overlap.
func (t *Truck) AcceptsCommitments() bool {
	return t.Status != TruckInMaintenance && t.Status != TruckOutOfService
}
