// server/internal/api/handlers/bid_handler.go
package handlers

import (
	"net/http"
	"time"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/schedule"
	"freight-match-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BidHandler struct {
	DB       *mongo.Database
	Schedule *schedule.Store
	Hub      *socket.Hub
}

type CreateBidPayload struct {
	TruckID              string    `json:"truckId" binding:"required"`
	Amount               float64   `json:"amount" binding:"required"`
	ProposedPickupDate   time.Time `json:"proposedPickupDate" binding:"required"`
	ProposedDeliveryDate time.Time `json:"proposedDeliveryDate" binding:"required"`
	Notes                string    `json:"notes"`
}

type UpdateBidPayload struct {
	TruckID              *string    `json:"truckId"`
	Amount               *float64   `json:"amount"`
	ProposedPickupDate   *time.Time `json:"proposedPickupDate"`
	ProposedDeliveryDate *time.Time `json:"proposedDeliveryDate"`
	Notes                *string    `json:"notes"`
}

// CreateBid places a carrier's bid on a published load with one of its own
// trucks, and reserves the truck's window in the same transaction.
func (h *BidHandler) CreateBid(c *gin.Context) {
	loadID := c.Query("loadId")
	if loadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "loadId query parameter is required"})
		return
	}

	var payload CreateBidPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	carrierID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		var load models.Load
		err := h.DB.Collection("loads").FindOne(sc, bson.M{"_id": loadID, "status": models.LoadPublished}).Decode(&load)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound("load not found or not available for bidding")
			}
			return nil, err
		}

		var truck models.Truck
		err = h.DB.Collection("trucks").FindOne(sc, bson.M{"_id": payload.TruckID, "carrierId": carrierID}).Decode(&truck)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound("truck not found or does not belong to carrier")
			}
			return nil, err
		}

		if err := models.ValidateBidDates(payload.ProposedPickupDate, payload.ProposedDeliveryDate, time.Now()); err != nil {
			return nil, err
		}

		count, err := h.DB.Collection("bids").CountDocuments(sc, bson.M{
			"loadId":    loadID,
			"carrierId": carrierID,
			"status":    bson.M{"$in": models.NonTerminalBidStatuses},
		})
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperr.Conflict("carrier has already placed a bid for this load")
		}

		now := time.Now()
		bid := models.Bid{
			ID:                   newID("BID"),
			LoadID:               loadID,
			CarrierID:            carrierID,
			TruckID:              truck.ID,
			Amount:               payload.Amount,
			Status:               models.BidPending,
			ProposedPickupDate:   payload.ProposedPickupDate,
			ProposedDeliveryDate: payload.ProposedDeliveryDate,
			Notes:                payload.Notes,
			CreatedAt:            now,
			UpdatedAt:            now,
		}

		// Commit re-checks truck status and overlap under a version guard,
		// so two concurrent bids on the same window cannot both land.
		if err := h.Schedule.Commit(sc, truck.ID, models.Commitment{
			Start:  payload.ProposedPickupDate,
			End:    payload.ProposedDeliveryDate,
			LoadID: loadID,
			BidID:  bid.ID,
		}); err != nil {
			return nil, err
		}

		if _, err := h.DB.Collection("bids").InsertOne(sc, bid); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperr.Conflict("carrier has already placed a bid for this load")
			}
			return nil, err
		}

		return bid, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// findCarrierBid fetches a bid scoped to the calling carrier.
func (h *BidHandler) findCarrierBid(sc mongo.SessionContext, bidID, carrierID string) (*models.Bid, error) {
	var bid models.Bid
	err := h.DB.Collection("bids").FindOne(sc, bson.M{"_id": bidID, "carrierId": carrierID}).Decode(&bid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("bid not found or not owned by carrier")
		}
		return nil, err
	}
	return &bid, nil
}

// UpdateBid changes a pending bid's amount, notes, dates or truck. A date or
// truck change is one atomic re-schedule: the old hold is released and the
// new one committed inside the same transaction, so a failed re-commit
// rolls the release back too.
func (h *BidHandler) UpdateBid(c *gin.Context) {
	var payload UpdateBidPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bidID := c.Param("id")
	carrierID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		bid, err := h.findCarrierBid(sc, bidID, carrierID)
		if err != nil {
			return nil, err
		}
		if err := bid.CanBeUpdated(); err != nil {
			return nil, err
		}

		pickup := bid.ProposedPickupDate
		delivery := bid.ProposedDeliveryDate
		if payload.ProposedPickupDate != nil {
			pickup = *payload.ProposedPickupDate
		}
		if payload.ProposedDeliveryDate != nil {
			delivery = *payload.ProposedDeliveryDate
		}
		datesChanged := payload.ProposedPickupDate != nil || payload.ProposedDeliveryDate != nil
		if datesChanged {
			if err := models.ValidateBidDates(pickup, delivery, time.Now()); err != nil {
				return nil, err
			}
		}

		truckID := bid.TruckID
		truckChanged := payload.TruckID != nil && *payload.TruckID != bid.TruckID
		if truckChanged {
			var newTruck models.Truck
			err := h.DB.Collection("trucks").FindOne(sc, bson.M{"_id": *payload.TruckID, "carrierId": carrierID}).Decode(&newTruck)
			if err != nil {
				if err == mongo.ErrNoDocuments {
					return nil, apperr.NotFound("truck not found or does not belong to carrier")
				}
				return nil, err
			}
			truckID = newTruck.ID
		}

		if datesChanged || truckChanged {
			if err := h.Schedule.Release(sc, bid.TruckID, bid.ID); err != nil {
				return nil, err
			}
			if err := h.Schedule.Commit(sc, truckID, models.Commitment{
				Start:  pickup,
				End:    delivery,
				LoadID: bid.LoadID,
				BidID:  bid.ID,
			}); err != nil {
				return nil, err
			}
		}

		set := bson.M{"updatedAt": time.Now()}
		if payload.Amount != nil {
			set["amount"] = *payload.Amount
		}
		if payload.Notes != nil {
			set["notes"] = *payload.Notes
		}
		if datesChanged {
			set["proposedPickupDate"] = pickup
			set["proposedDeliveryDate"] = delivery
		}
		if truckChanged {
			set["truckId"] = truckID
		}

		res := h.DB.Collection("bids").FindOneAndUpdate(sc,
			bson.M{"_id": bid.ID, "status": models.BidPending},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.Bid
		if err := res.Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.BadRequest("only pending bids can be updated")
			}
			return nil, err
		}
		return updated, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelBid cancels a pending bid and releases its truck hold.
func (h *BidHandler) CancelBid(c *gin.Context) {
	bidID := c.Param("id")
	carrierID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		bid, err := h.findCarrierBid(sc, bidID, carrierID)
		if err != nil {
			return nil, err
		}
		if err := bid.CanBeCancelled(); err != nil {
			return nil, err
		}

		if err := h.Schedule.Release(sc, bid.TruckID, bid.ID); err != nil {
			return nil, err
		}

		res := h.DB.Collection("bids").FindOneAndUpdate(sc,
			bson.M{"_id": bid.ID, "status": models.BidPending},
			bson.M{"$set": bson.M{"status": models.BidCancelled, "updatedAt": time.Now()}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var cancelled models.Bid
		if err := res.Decode(&cancelled); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.BadRequest("only pending bids can be cancelled")
			}
			return nil, err
		}
		return cancelled, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBidsForLoad lists bids on a load owned by the calling shipper.
func (h *BidHandler) GetBidsForLoad(c *gin.Context) {
	loadID := c.Query("loadId")
	if loadID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "loadId query parameter is required"})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	shipperID := c.GetString("profile_id")
	var load models.Load
	err := h.DB.Collection("loads").FindOne(ctx, bson.M{"_id": loadID, "shipperId": shipperID}).Decode(&load)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperr.NotFound("load not found or not owned by shipper"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query load"})
		return
	}

	page, limit := paginationParams(c)
	filter := bson.M{"loadId": loadID}
	collection := h.DB.Collection("bids")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count bids"})
		return
	}

	cursor, err := collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query bids"})
		return
	}
	defer cursor.Close(ctx)

	bids := []models.Bid{}
	if err := cursor.All(ctx, &bids); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode bids"})
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(bids, total, page, limit))
}

// GetCarrierBids lists the calling carrier's own bids, optionally filtered
// by status and creation date range.
func (h *BidHandler) GetCarrierBids(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	filter := bson.M{"carrierId": c.GetString("profile_id")}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if startDate := c.Query("startDate"); startDate != "" {
		if endDate := c.Query("endDate"); endDate != "" {
			start, err1 := time.Parse(time.RFC3339, startDate)
			end, err2 := time.Parse(time.RFC3339, endDate)
			if err1 != nil || err2 != nil {
				respondError(c, apperr.BadRequest("startDate and endDate must be RFC3339 timestamps"))
				return
			}
			filter["createdAt"] = bson.M{"$gte": start, "$lte": end}
		}
	}

	page, limit := paginationParams(c)
	collection := h.DB.Collection("bids")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count bids"})
		return
	}

	cursor, err := collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query bids"})
		return
	}
	defer cursor.Close(ctx)

	bids := []models.Bid{}
	if err := cursor.All(ctx, &bids); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode bids"})
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(bids, total, page, limit))
}

// AcceptBid accepts a bid through the bid-scoped alias route. It applies the
// same published-load guard as the load-scoped route.
func (h *BidHandler) AcceptBid(c *gin.Context) {
	bidID := c.Query("bidId")
	if bidID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bidId query parameter is required"})
		return
	}

	result, err := acceptBid(c, h.DB, h.Schedule, h.Hub, "", bidID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
