// server/internal/models/shipment_test.go
package models

import (
	"testing"
	"time"
)

func TestShipmentCanBeStarted(t *testing.T) {
	shipment := Shipment{Status: ShipmentScheduled}
	if err := shipment.CanBeStarted(); err != nil {
		t.Errorf("scheduled shipment should be startable: %v", err)
	}
	for _, status := range []ShipmentStatus{ShipmentInTransit, ShipmentDelivered, ShipmentDelayed, ShipmentCancelled} {
		shipment.Status = status
		if err := shipment.CanBeStarted(); err == nil {
			t.Errorf("shipment with status %s should not be startable", status)
		}
	}
}

func TestShipmentCanBeDelivered(t *testing.T) {
	shipment := Shipment{}
	// A delayed shipment can still arrive.
	for _, status := range []ShipmentStatus{ShipmentScheduled, ShipmentInTransit, ShipmentDelayed} {
		shipment.Status = status
		if err := shipment.CanBeDelivered(); err != nil {
			t.Errorf("shipment with status %s should be deliverable: %v", status, err)
		}
	}
	for _, status := range []ShipmentStatus{ShipmentDelivered, ShipmentCancelled} {
		shipment.Status = status
		if err := shipment.CanBeDelivered(); err == nil {
			t.Errorf("shipment with status %s should not be deliverable", status)
		}
	}
}

func TestShipmentCanAssignDriver(t *testing.T) {
	shipment := Shipment{Status: ShipmentScheduled}
	if err := shipment.CanAssignDriver(); err != nil {
		t.Errorf("scheduled shipment should allow driver assignment: %v", err)
	}
	for _, status := range []ShipmentStatus{ShipmentInTransit, ShipmentDelivered, ShipmentDelayed, ShipmentCancelled} {
		shipment.Status = status
		if err := shipment.CanAssignDriver(); err == nil {
			t.Errorf("shipment with status %s should not allow driver assignment", status)
		}
	}
}

func TestShipmentIsDelayCandidate(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	delivered := now.Add(-30 * time.Minute)

	tests := []struct {
		name     string
		shipment Shipment
		want     bool
	}{
		{"overdue in transit", Shipment{Status: ShipmentInTransit, EstimatedDeliveryDate: past}, true},
		{"overdue scheduled", Shipment{Status: ShipmentScheduled, EstimatedDeliveryDate: past}, true},
		{"not yet due", Shipment{Status: ShipmentInTransit, EstimatedDeliveryDate: future}, false},
		{"due exactly now", Shipment{Status: ShipmentInTransit, EstimatedDeliveryDate: now}, false},
		{"already delayed", Shipment{Status: ShipmentDelayed, EstimatedDeliveryDate: past}, false},
		{"already delivered", Shipment{Status: ShipmentDelivered, EstimatedDeliveryDate: past}, false},
		{"cancelled", Shipment{Status: ShipmentCancelled, EstimatedDeliveryDate: past}, false},
		{"delivered concurrently", Shipment{Status: ShipmentInTransit, EstimatedDeliveryDate: past, ActualDeliveryDate: &delivered}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shipment.IsDelayCandidate(now); got != tt.want {
				t.Errorf("IsDelayCandidate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextDriverStatusAfterDelivery(t *testing.T) {
	if got := NextDriverStatusAfterDelivery(0); got != DriverAvailable {
		t.Errorf("no remaining shipments: got %s, want %s", got, DriverAvailable)
	}
	if got := NextDriverStatusAfterDelivery(2); got != DriverAssigned {
		t.Errorf("remaining shipments: got %s, want %s", got, DriverAssigned)
	}
}

func TestTruckAcceptsCommitments(t *testing.T) {
	truck := Truck{Status: TruckAvailable}
	if !truck.AcceptsCommitments() {
		t.Error("available truck should accept commitments")
	}
	for _, status := range []TruckStatus{TruckInMaintenance, TruckOutOfService} {
		truck.Status = status
		if truck.AcceptsCommitments() {
			t.Errorf("truck with status %s should not accept commitments", status)
		}
	}
}
