// server/internal/schedule/schedule_test.go
package schedule

import (
	"testing"
	"time"

	"freight-match-api-server/internal/models"
)

func day(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical windows", day(1), day(5), day(1), day(5), true},
		{"partial overlap", day(1), day(5), day(3), day(8), true},
		{"b inside a", day(1), day(10), day(3), day(5), true},
		{"a inside b", day(3), day(5), day(1), day(10), true},
		{"disjoint", day(1), day(3), day(5), day(8), false},
		{"disjoint reversed", day(5), day(8), day(1), day(3), false},
		{"back to back", day(1), day(3), day(3), day(5), false},
		{"back to back reversed", day(3), day(5), day(1), day(3), false},
		{"one minute overlap", day(1), day(3).Add(time.Minute), day(3), day(5), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Errorf("Overlaps(%v, %v, %v, %v) = %v, want %v", tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}

func TestHasConflict(t *testing.T) {
	commitments := []models.Commitment{
		{Start: day(1), End: day(3), BidID: "BID-A"},
		{Start: day(10), End: day(12), BidID: "BID-B"},
	}

	if HasConflict(commitments, day(3), day(10)) {
		t.Error("window fitting exactly between two commitments should not conflict")
	}
	if !HasConflict(commitments, day(2), day(4)) {
		t.Error("window overlapping the first commitment should conflict")
	}
	if !HasConflict(commitments, day(11), day(15)) {
		t.Error("window overlapping the second commitment should conflict")
	}
	if HasConflict(nil, day(1), day(30)) {
		t.Error("empty schedule should never conflict")
	}
}

func TestWithoutBid(t *testing.T) {
	commitments := []models.Commitment{
		{Start: day(1), End: day(3), BidID: "BID-A"},
		{Start: day(5), End: day(7), BidID: "BID-B"},
		{Start: day(10), End: day(12), BidID: "BID-A"},
	}

	kept := WithoutBid(commitments, "BID-A")
	if len(kept) != 1 {
		t.Fatalf("expected 1 commitment left, got %d", len(kept))
	}
	if kept[0].BidID != "BID-B" {
		t.Errorf("expected BID-B to survive, got %s", kept[0].BidID)
	}

	unchanged := WithoutBid(commitments, "BID-MISSING")
	if len(unchanged) != 3 {
		t.Errorf("removing an unknown bid should keep all commitments, got %d", len(unchanged))
	}
}
