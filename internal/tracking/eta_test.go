// server/internal/tracking/eta_test.go
package tracking

import (
	"math"
	"testing"
	"time"

	"freight-match-api-server/internal/models"
)

func speed(v float64) *float64 { return &v }

func TestHaversineKm(t *testing.T) {
	a := models.GeoPoint{Lat: 33.5731, Lng: -7.5898}
	if got := HaversineKm(a, a); got != 0 {
		t.Errorf("distance to self = %f, want 0", got)
	}

	// One degree of latitude on the equator is about 111.19 km.
	got := HaversineKm(models.GeoPoint{Lat: 0, Lng: 0}, models.GeoPoint{Lat: 1, Lng: 0})
	if math.Abs(got-111.19) > 0.5 {
		t.Errorf("one degree of latitude = %f km, want ~111.19", got)
	}

	// Casablanca to Rabat, roughly 87 km.
	rabat := models.GeoPoint{Lat: 34.0209, Lng: -6.8416}
	got = HaversineKm(a, rabat)
	if got < 80 || got > 95 {
		t.Errorf("Casablanca to Rabat = %f km, want between 80 and 95", got)
	}
}

func TestAverageSpeedKmh(t *testing.T) {
	if got := AverageSpeedKmh(nil); got != 0 {
		t.Errorf("empty history = %f, want 0", got)
	}

	// Zero and missing speeds are parked or bad readings; they must not
	// drag the average down.
	history := []models.LocationHistory{
		{Location: models.LocationPoint{Speed: speed(60)}},
		{Location: models.LocationPoint{Speed: speed(0)}},
		{Location: models.LocationPoint{}},
		{Location: models.LocationPoint{Speed: speed(80)}},
	}
	if got := AverageSpeedKmh(history); got != 70 {
		t.Errorf("average speed = %f, want 70", got)
	}

	onlyZeros := []models.LocationHistory{
		{Location: models.LocationPoint{Speed: speed(0)}},
	}
	if got := AverageSpeedKmh(onlyZeros); got != 0 {
		t.Errorf("all-zero history = %f, want 0", got)
	}
}

func TestEstimateArrival(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	destination := models.GeoPoint{Lat: 1, Lng: 0}

	if got := EstimateArrival(nil, destination, nil, now); got != nil {
		t.Error("unknown current position should yield no estimate")
	}

	// ~111.19 km at the default 50 km/h is about 2h13m.
	current := &models.GeoPoint{Lat: 0, Lng: 0}
	eta := EstimateArrival(current, destination, nil, now)
	if eta == nil {
		t.Fatal("expected an estimate")
	}
	travel := eta.Sub(now)
	if travel < 2*time.Hour || travel > 2*time.Hour+30*time.Minute {
		t.Errorf("travel time at default speed = %s, want ~2h13m", travel)
	}

	// With recorded speeds the average is used instead of the default.
	history := []models.LocationHistory{
		{Location: models.LocationPoint{Speed: speed(100)}},
	}
	fastETA := EstimateArrival(current, destination, history, now)
	if fastETA == nil {
		t.Fatal("expected an estimate")
	}
	if !fastETA.Before(*eta) {
		t.Error("a faster recorded speed should produce an earlier arrival")
	}
}
