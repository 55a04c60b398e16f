// server/internal/models/load_test.go
package models

import (
	"testing"
	"time"
)

func publishableLoad() Load {
	return Load{
		ID:               "LOAD-1",
		Status:           LoadDraft,
		Origin:           Location{Address: "Casablanca"},
		Destination:      Location{Address: "Tangier"},
		PickupDate:       time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC),
		DeliveryDeadline: time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC),
		Budget:           5000,
	}
}

func TestLoadCanBeUpdated(t *testing.T) {
	load := publishableLoad()
	if err := load.CanBeUpdated(); err != nil {
		t.Errorf("draft load should be updatable: %v", err)
	}
	for _, status := range []LoadStatus{LoadPublished, LoadAccepted, LoadCancelled, LoadInTransit, LoadDelivered} {
		load.Status = status
		if err := load.CanBeUpdated(); err == nil {
			t.Errorf("load with status %s should not be updatable", status)
		}
	}
}

func TestLoadCanBeDeleted(t *testing.T) {
	load := publishableLoad()
	for _, status := range []LoadStatus{LoadDraft, LoadCancelled} {
		load.Status = status
		if err := load.CanBeDeleted(); err != nil {
			t.Errorf("load with status %s should be deletable: %v", status, err)
		}
	}
	for _, status := range []LoadStatus{LoadPublished, LoadAccepted, LoadInTransit, LoadDelivered} {
		load.Status = status
		if err := load.CanBeDeleted(); err == nil {
			t.Errorf("load with status %s should not be deletable", status)
		}
	}
}

func TestLoadCanBePublished(t *testing.T) {
	load := publishableLoad()
	if err := load.CanBePublished(); err != nil {
		t.Fatalf("complete draft load should be publishable: %v", err)
	}

	noOrigin := publishableLoad()
	noOrigin.Origin.Address = ""
	if err := noOrigin.CanBePublished(); err == nil {
		t.Error("load without origin should not be publishable")
	}

	noDates := publishableLoad()
	noDates.PickupDate = time.Time{}
	if err := noDates.CanBePublished(); err == nil {
		t.Error("load without pickup date should not be publishable")
	}

	noBudget := publishableLoad()
	noBudget.Budget = 0
	if err := noBudget.CanBePublished(); err == nil {
		t.Error("load without budget should not be publishable")
	}

	republish := publishableLoad()
	republish.Status = LoadPublished
	if err := republish.CanBePublished(); err == nil {
		t.Error("already published load should not be publishable again")
	}
}

func TestLoadCanBeCancelled(t *testing.T) {
	load := publishableLoad()
	for _, status := range []LoadStatus{LoadDraft, LoadPublished} {
		load.Status = status
		if err := load.CanBeCancelled(); err != nil {
			t.Errorf("load with status %s should be cancellable: %v", status, err)
		}
	}
	for _, status := range []LoadStatus{LoadAccepted, LoadInTransit, LoadDelivered, LoadCancelled} {
		load.Status = status
		if err := load.CanBeCancelled(); err == nil {
			t.Errorf("load with status %s should not be cancellable", status)
		}
	}
}

func TestLoadCanAcceptBid(t *testing.T) {
	load := publishableLoad()
	load.Status = LoadPublished
	if err := load.CanAcceptBid(); err != nil {
		t.Errorf("published load should accept bids: %v", err)
	}
	for _, status := range []LoadStatus{LoadDraft, LoadAccepted, LoadCancelled, LoadDelivered} {
		load.Status = status
		if err := load.CanAcceptBid(); err == nil {
			t.Errorf("load with status %s should not accept bids", status)
		}
	}
}
