// server/internal/models/bid_test.go
package models

import (
	"testing"
	"time"
)

func TestValidateBidDates(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	tomorrow := now.Add(24 * time.Hour)
	nextWeek := now.Add(7 * 24 * time.Hour)

	if err := ValidateBidDates(tomorrow, nextWeek, now); err != nil {
		t.Errorf("valid dates rejected: %v", err)
	}
	if err := ValidateBidDates(nextWeek, tomorrow, now); err == nil {
		t.Error("pickup after delivery should be rejected")
	}
	if err := ValidateBidDates(tomorrow, tomorrow, now); err == nil {
		t.Error("pickup equal to delivery should be rejected")
	}
	if err := ValidateBidDates(now.Add(-time.Hour), nextWeek, now); err == nil {
		t.Error("pickup in the past should be rejected")
	}
	if err := ValidateBidDates(now, nextWeek, now); err == nil {
		t.Error("pickup exactly now should be rejected")
	}
}

func TestBidCanBeUpdated(t *testing.T) {
	bid := Bid{Status: BidPending}
	if err := bid.CanBeUpdated(); err != nil {
		t.Errorf("pending bid should be updatable: %v", err)
	}
	for _, status := range []BidStatus{BidAccepted, BidRejected, BidCancelled} {
		bid.Status = status
		if err := bid.CanBeUpdated(); err == nil {
			t.Errorf("bid with status %s should not be updatable", status)
		}
	}
}

func TestBidCanBeCancelled(t *testing.T) {
	bid := Bid{Status: BidPending}
	if err := bid.CanBeCancelled(); err != nil {
		t.Errorf("pending bid should be cancellable: %v", err)
	}

	bid.Status = BidCancelled
	err := bid.CanBeCancelled()
	if err == nil {
		t.Fatal("cancelling twice should fail")
	}

	bid.Status = BidAccepted
	if err := bid.CanBeCancelled(); err == nil {
		t.Error("accepted bid should not be cancellable")
	}
}
