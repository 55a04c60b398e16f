// server/internal/schedule/schedule.go
package schedule

import (
	"context"
	"time"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) conflict. Back-to-back windows (one ends exactly where the
// other starts) do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasConflict reports whether [start, end) overlaps any existing commitment.
func HasConflict(commitments []models.Commitment, start, end time.Time) bool {
	for _, c := range commitments {
		if Overlaps(start, end, c.Start, c.End) {
			return true
		}
	}
	return false
}

// WithoutBid returns the commitments with the given bid's hold removed.
func WithoutBid(commitments []models.Commitment, bidID string) []models.Commitment {
	kept := make([]models.Commitment, 0, len(commitments))
	for _, c := range commitments {
		if c.BidID != bidID {
			kept = append(kept, c)
		}
	}
	return kept
}

// commitRetries bounds the optimistic-concurrency loop in Commit. Three
// losses in a row on the same truck means real contention on the same
// window, which resolves to a conflict anyway.
const commitRetries = 3

// Store holds per-truck committed time windows inside the truck document
// itself and serializes concurrent commits with a version-guarded update:
// two overlapping commits racing on one truck cannot both succeed.
type Store struct {
	DB *mongo.Database
}

func (s *Store) trucks() *mongo.Collection {
	return s.DB.Collection("trucks")
}

// CheckAvailable reports whether the truck can take [start, end). A truck in
// maintenance or out of service rejects every interval.
func (s *Store) CheckAvailable(ctx context.Context, truckID string, start, end time.Time) error {
	var truck models.Truck
	if err := s.trucks().FindOne(ctx, bson.M{"_id": truckID}).Decode(&truck); err != nil {
		if err == mongo.ErrNoDocuments {
			return apperr.NotFound("truck not found")
		}
		return err
	}
	return checkTruck(&truck, start, end)
}

func checkTruck(truck *models.Truck, start, end time.Time) error {
	if !truck.AcceptsCommitments() {
		return apperr.BadRequest("truck is not available for new commitments")
	}
	if HasConflict(truck.Commitments, start, end) {
		return apperr.Conflict("truck has conflicting commitments for the proposed dates")
	}
	return nil
}

// Commit reserves the commitment's window on the truck. The conflict check
// and the write are tied together by scheduleVersion: if another commit
// lands in between, the guarded update matches nothing and the check is
// redone against the fresh document.
func (s *Store) Commit(ctx context.Context, truckID string, c models.Commitment) error {
	for attempt := 0; attempt < commitRetries; attempt++ {
		var truck models.Truck
		if err := s.trucks().FindOne(ctx, bson.M{"_id": truckID}).Decode(&truck); err != nil {
			if err == mongo.ErrNoDocuments {
				return apperr.NotFound("truck not found")
			}
			return err
		}

		if err := checkTruck(&truck, c.Start, c.End); err != nil {
			return err
		}

		res, err := s.trucks().UpdateOne(ctx,
			bson.M{"_id": truckID, "scheduleVersion": truck.ScheduleVersion},
			bson.M{
				"$push": bson.M{"commitments": c},
				"$inc":  bson.M{"scheduleVersion": 1},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 1 {
			return nil
		}
		// Lost the race; re-read and re-check.
	}
	return apperr.Conflict("truck schedule changed concurrently, please retry")
}

// Release removes the hold keyed by bidID. Releasing a hold that is already
// gone is a no-op.
func (s *Store) Release(ctx context.Context, truckID string, bidID string) error {
	_, err := s.trucks().UpdateOne(ctx,
		bson.M{"_id": truckID},
		bson.M{
			"$pull": bson.M{"commitments": bson.M{"bidId": bidID}},
			"$inc":  bson.M{"scheduleVersion": 1},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}
