// server/internal/api/handlers/accept_bid.go
package handlers

import (
	"time"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/schedule"
	"freight-match-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// acceptBid is the single accept path behind both the load-scoped route and
// the bid-scoped alias. Everything from rejecting the losing bids to
// creating the shipment commits or rolls back as one transaction: a crash in
// the middle can never leave two accepted bids, or an accepted load without
// a shipment.
func acceptBid(c *gin.Context, db *mongo.Database, sched *schedule.Store, hub *socket.Hub, loadID, bidID string) (gin.H, error) {
	shipperID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, db, func(sc mongo.SessionContext) (interface{}, error) {
		bids := db.Collection("bids")
		loads := db.Collection("loads")
		shipments := db.Collection("shipments")

		// Resolve the target bid; the alias route has no load id.
		bidFilter := bson.M{"_id": bidID}
		if loadID != "" {
			bidFilter["loadId"] = loadID
		}
		var bid models.Bid
		if err := bids.FindOne(sc, bidFilter).Decode(&bid); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound("bid not found")
			}
			return nil, err
		}
		if bid.Status != models.BidPending {
			return nil, apperr.NotFound("bid not found or not pending")
		}

		var load models.Load
		if err := loads.FindOne(sc, bson.M{"_id": bid.LoadID, "shipperId": shipperID}).Decode(&load); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound("load not found or not owned by shipper")
			}
			return nil, err
		}
		if err := load.CanAcceptBid(); err != nil {
			return nil, err
		}

		// Reject every other live bid and release its truck hold.
		cursor, err := bids.Find(sc, bson.M{
			"loadId": load.ID,
			"_id":    bson.M{"$ne": bid.ID},
			"status": bson.M{"$in": models.NonTerminalBidStatuses},
		})
		if err != nil {
			return nil, err
		}
		var otherBids []models.Bid
		if err := cursor.All(sc, &otherBids); err != nil {
			return nil, err
		}
		for _, other := range otherBids {
			if err := sched.Release(sc, other.TruckID, other.ID); err != nil {
				return nil, err
			}
		}
		if len(otherBids) > 0 {
			_, err = bids.UpdateMany(sc,
				bson.M{"loadId": load.ID, "_id": bson.M{"$ne": bid.ID}, "status": bson.M{"$in": models.NonTerminalBidStatuses}},
				bson.M{"$set": bson.M{"status": models.BidRejected, "updatedAt": time.Now()}},
			)
			if err != nil {
				return nil, err
			}
		}

		now := time.Now()
		if _, err := bids.UpdateOne(sc,
			bson.M{"_id": bid.ID},
			bson.M{"$set": bson.M{"status": models.BidAccepted, "updatedAt": now}},
		); err != nil {
			return nil, err
		}

		if _, err := loads.UpdateOne(sc,
			bson.M{"_id": load.ID},
			bson.M{"$set": bson.M{
				"status":            models.LoadAccepted,
				"acceptedBidId":     bid.ID,
				"acceptedBidAmount": bid.Amount,
				"updatedAt":         now,
			}},
		); err != nil {
			return nil, err
		}

		// The shipment inherits dates, carrier and truck from the winning
		// bid. The driver is assigned later by the carrier.
		shipment := models.Shipment{
			ID:                    newID("SHIP"),
			LoadID:                load.ID,
			BidID:                 bid.ID,
			CarrierID:             bid.CarrierID,
			TruckID:               bid.TruckID,
			Status:                models.ShipmentScheduled,
			StartDate:             bid.ProposedPickupDate,
			EstimatedDeliveryDate: bid.ProposedDeliveryDate,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		if _, err := shipments.InsertOne(sc, shipment); err != nil {
			return nil, err
		}

		return shipment, nil
	})
	if err != nil {
		return nil, err
	}

	shipment := result.(models.Shipment)

	hub.Broadcast(shipment.ID, socket.Event{
		Event: "statusChanged",
		Data: map[string]interface{}{
			"shipmentId": shipment.ID,
			"newStatus":  models.ShipmentScheduled,
			"timestamp":  time.Now(),
		},
	})

	return gin.H{
		"status":   "success",
		"message":  "Bid accepted. A shipment has been created.",
		"shipment": shipment,
	}, nil
}
