// server/internal/sweeper/sweeper.go
package sweeper

import (
	"context"
	"log"
	"time"

	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/socket"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sweeper periodically flips shipments past their estimated delivery time to
// delayed. Each sweep is idempotent: the filter excludes shipments already
// delayed, delivered or cancelled, and the actualDeliveryDate guard keeps a
// concurrently delivered shipment out of reach, so overlapping runs are safe.
type Sweeper struct {
	DB       *mongo.Database
	Hub      *socket.Hub
	Interval time.Duration
}

// Run loops until the context is cancelled. The first sweep happens after
// one interval, not at startup.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	log.Printf("Delay sweeper running every %s", s.Interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("Delay sweeper stopped")
			return
		case <-ticker.C:
			flipped, err := s.SweepOnce(ctx, time.Now())
			if err != nil {
				log.Printf("Delay sweep failed: %v", err)
				continue
			}
			if flipped > 0 {
				log.Printf("Marked %d shipments as delayed", flipped)
			}
		}
	}
}

// SweepOnce performs a single sweep at the given instant and returns the
// number of shipments flipped. A single failed update is logged and skipped
// rather than aborting the rest of the sweep.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int, error) {
	shipments := s.DB.Collection("shipments")

	filter := bson.M{
		"estimatedDeliveryDate": bson.M{"$lt": now},
		"status": bson.M{"$nin": bson.A{
			models.ShipmentDelivered,
			models.ShipmentCancelled,
			models.ShipmentDelayed,
		}},
		"actualDeliveryDate": nil,
	}

	cursor, err := shipments.Find(ctx, filter)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var candidates []models.Shipment
	if err := cursor.All(ctx, &candidates); err != nil {
		return 0, err
	}

	flipped := 0
	for _, shipment := range candidates {
		// Re-apply the guards on the individual update so a delivery that
		// raced the Find cannot be overwritten.
		res, err := shipments.UpdateOne(ctx,
			bson.M{
				"_id": shipment.ID,
				"status": bson.M{"$nin": bson.A{
					models.ShipmentDelivered,
					models.ShipmentCancelled,
					models.ShipmentDelayed,
				}},
				"actualDeliveryDate": nil,
			},
			bson.M{"$set": bson.M{"status": models.ShipmentDelayed, "updatedAt": now}},
		)
		if err != nil {
			log.Printf("Delay sweep: failed to update shipment %s: %v", shipment.ID, err)
			continue
		}
		if res.ModifiedCount == 0 {
			continue
		}
		flipped++
		if s.Hub != nil {
			s.Hub.Broadcast(shipment.ID, socket.Event{
				Event: "statusChanged",
				Data: map[string]interface{}{
					"shipmentId": shipment.ID,
					"newStatus":  models.ShipmentDelayed,
					"timestamp":  now,
				},
			})
		}
	}

	return flipped, nil
}
