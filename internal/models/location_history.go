// server/internal/models/location_history.go
package models

import "time"

// LocationPoint is a recorded GPS fix. Speed is in km/h.
type LocationPoint struct {
	Lat      float64  `bson:"lat" json:"lat"`
	Lng      float64  `bson:"lng" json:"lng"`
	Accuracy *float64 `bson:"accuracy,omitempty" json:"accuracy,omitempty"`
	Heading  *float64 `bson:"heading,omitempty" json:"heading,omitempty"`
	Speed    *float64 `bson:"speed,omitempty" json:"speed,omitempty"`
}

// LocationHistory is append-only. Rows are never updated or deleted; the
// stream ordered by recordedAt is the source of truth for current location
// and ETA.
type LocationHistory struct {
	ID         string        `bson:"_id" json:"id"`
	ShipmentID string        `bson:"shipmentId" json:"shipmentId"`
	TruckID    string        `bson:"truckId" json:"truckId"`
	Location   LocationPoint `bson:"location" json:"location"`
	Notes      string        `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedAt time.Time     `bson:"recordedAt" json:"recordedAt"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}
