// server/internal/tracking/eta.go
package tracking

import (
	"math"
	"time"

	"freight-match-api-server/internal/models"
)

// DefaultSpeedKmh is assumed when no recorded speed data exists.
const DefaultSpeedKmh = 50.0

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(from, to models.GeoPoint) float64 {
	dLat := toRadians(to.Lat - from.Lat)
	dLng := toRadians(to.Lng - from.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(from.Lat))*math.Cos(toRadians(to.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// AverageSpeedKmh averages the non-zero recorded speeds in the history.
// Returns 0 when no usable readings exist.
func AverageSpeedKmh(history []models.LocationHistory) float64 {
	var total float64
	var readings int
	for _, entry := range history {
		if entry.Location.Speed != nil && *entry.Location.Speed > 0 {
			total += *entry.Location.Speed
			readings++
		}
	}
	if readings == 0 {
		return 0
	}
	return total / float64(readings)
}

// EstimateArrival projects the arrival time from the current position to the
// destination at the average recorded speed (DefaultSpeedKmh if none).
// Returns nil when the current position is unknown.
func EstimateArrival(current *models.GeoPoint, destination models.GeoPoint, history []models.LocationHistory, now time.Time) *time.Time {
	if current == nil {
		return nil
	}
	speed := AverageSpeedKmh(history)
	if speed <= 0 {
		speed = DefaultSpeedKmh
	}
	distanceKm := HaversineKm(*current, destination)
	hours := distanceKm / speed
	eta := now.Add(time.Duration(hours * float64(time.Hour)))
	return &eta
}
