// server/internal/api/handlers/load_handler.go
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

type LoadHandler struct {
	DB       *mongo.Database
	Schedule *schedule.Store
	Hub      *socket.Hub
}

type CreateLoadPayload struct {
	Origin           models.Location   `json:"origin" binding:"required"`
	Destination      models.Location   `json:"destination" binding:"required"`
	Weight           float64           `json:"weight" binding:"required"`
	WeightUnit       string            `json:"weightUnit"`
	Dimensions       models.Dimensions `json:"dimensions" binding:"required"`
	CargoTypes       []string          `json:"cargoTypes"`
	PickupDate       time.Time         `json:"pickupDate" binding:"required"`
	DeliveryDeadline time.Time         `json:"deliveryDeadline" binding:"required"`
	Budget           float64           `json:"budget" binding:"required"`
	Description      string            `json:"description"`
}

type UpdateLoadPayload struct {
	Origin           *models.Location   `json:"origin"`
	Destination      *models.Location   `json:"destination"`
	Weight           *float64           `json:"weight"`
	WeightUnit       *string            `json:"weightUnit"`
	Dimensions       *models.Dimensions `json:"dimensions"`
	CargoTypes       []string           `json:"cargoTypes"`
	PickupDate       *time.Time         `json:"pickupDate"`
	DeliveryDeadline *time.Time         `json:"deliveryDeadline"`
	Budget           *float64           `json:"budget"`
	Description      *string            `json:"description"`
}

// findShipperLoad fetches a load scoped to the calling shipper. Missing and
// not-owned are deliberately the same error.
func (h *LoadHandler) findShipperLoad(c *gin.Context, loadID string) (*models.Load, error) {
	ctx, cancel := opContext(c)
	defer cancel()

	shipperID := c.GetString("profile_id")
	var load models.Load
	err := h.DB.Collection("loads").FindOne(ctx, bson.M{"_id": loadID, "shipperId": shipperID}).Decode(&load)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("load not found")
		}
		return nil, err
	}
	return &load, nil
}

// CreateLoad creates a new load in draft for the calling shipper.
func (h *LoadHandler) CreateLoad(c *gin.Context) {
	var payload CreateLoadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if payload.WeightUnit == "" {
		payload.WeightUnit = "kg"
	}
	if payload.Dimensions.Unit == "" {
		payload.Dimensions.Unit = "m"
	}
	if len(payload.CargoTypes) == 0 {
		payload.CargoTypes = []string{"general"}
	}

	now := time.Now()
	load := models.Load{
		ID:               newID("LOAD"),
		ShipperID:        c.GetString("profile_id"),
		Origin:           payload.Origin,
		Destination:      payload.Destination,
		Weight:           payload.Weight,
		WeightUnit:       payload.WeightUnit,
		Dimensions:       payload.Dimensions,
		CargoTypes:       payload.CargoTypes,
		Status:           models.LoadDraft,
		PickupDate:       payload.PickupDate,
		DeliveryDeadline: payload.DeliveryDeadline,
		Budget:           payload.Budget,
		Description:      payload.Description,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	ctx, cancel := opContext(c)
	defer cancel()

	if _, err := h.DB.Collection("loads").InsertOne(ctx, load); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create load"})
		return
	}

	c.JSON(http.StatusCreated, load)
}

// GetMyLoads lists the calling shipper's loads, newest first.
func (h *LoadHandler) GetMyLoads(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := paginationParams(c)
	filter := bson.M{"shipperId": c.GetString("profile_id")}
	collection := h.DB.Collection("loads")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count loads"})
		return
	}

	cursor, err := collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query loads"})
		return
	}
	defer cursor.Close(ctx)

	loads := []models.Load{}
	if err := cursor.All(ctx, &loads); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode loads"})
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(loads, total, page, limit))
}

// GetPublicLoads lists published loads for carriers to browse.
func (h *LoadHandler) GetPublicLoads(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := paginationParams(c)
	filter := bson.M{"status": models.LoadPublished}
	collection := h.DB.Collection("loads")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count loads"})
		return
	}

	cursor, err := collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query loads"})
		return
	}
	defer cursor.Close(ctx)

	loads := []models.Load{}
	if err := cursor.All(ctx, &loads); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode loads"})
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(loads, total, page, limit))
}

// GetLoad returns one load. Shippers see their own loads in any status;
// everyone else only sees published loads.
func (h *LoadHandler) GetLoad(c *gin.Context) {
	loadID := c.Param("id")
	role := c.GetString("user_role")

	if role == models.RoleShipper {
		load, err := h.findShipperLoad(c, loadID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, load)
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var load models.Load
	err := h.DB.Collection("loads").FindOne(ctx, bson.M{"_id": loadID, "status": models.LoadPublished}).Decode(&load)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperr.NotFound("load not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query load"})
		return
	}
	c.JSON(http.StatusOK, load)
}

// UpdateLoad patches a draft load.
func (h *LoadHandler) UpdateLoad(c *gin.Context) {
	var payload UpdateLoadPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	load, err := h.findShipperLoad(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := load.CanBeUpdated(); err != nil {
		respondError(c, err)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if payload.Origin != nil {
		set["origin"] = *payload.Origin
	}
	if payload.Destination != nil {
		set["destination"] = *payload.Destination
	}
	if payload.Weight != nil {
		set["weight"] = *payload.Weight
	}
	if payload.WeightUnit != nil {
		set["weightUnit"] = *payload.WeightUnit
	}
	if payload.Dimensions != nil {
		dims := *payload.Dimensions
		if dims.Unit == "" {
			dims.Unit = "m"
		}
		set["dimensions"] = dims
	}
	if payload.CargoTypes != nil {
		set["cargoTypes"] = payload.CargoTypes
	}
	if payload.PickupDate != nil {
		set["pickupDate"] = *payload.PickupDate
	}
	if payload.DeliveryDeadline != nil {
		set["deliveryDeadline"] = *payload.DeliveryDeadline
	}
	if payload.Budget != nil {
		set["budget"] = *payload.Budget
	}
	if payload.Description != nil {
		set["description"] = *payload.Description
	}

	ctx, cancel := opContext(c)
	defer cancel()

	// Guard the status in the filter too, so a publish that races this
	// update cannot be overwritten.
	res := h.DB.Collection("loads").FindOneAndUpdate(ctx,
		bson.M{"_id": load.ID, "status": models.LoadDraft},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Load
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperr.BadRequest("cannot update load, it is no longer in draft"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update load"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteLoad removes a draft or cancelled load.
func (h *LoadHandler) DeleteLoad(c *gin.Context) {
	load, err := h.findShipperLoad(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := load.CanBeDeleted(); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	if _, err := h.DB.Collection("loads").DeleteOne(ctx, bson.M{"_id": load.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete load"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Load deleted"})
}

// PublishLoad moves a draft load to published so carriers can bid on it.
func (h *LoadHandler) PublishLoad(c *gin.Context) {
	load, err := h.findShipperLoad(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := load.CanBePublished(); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	res := h.DB.Collection("loads").FindOneAndUpdate(ctx,
		bson.M{"_id": load.ID, "status": models.LoadDraft},
		bson.M{"$set": bson.M{"status": models.LoadPublished, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Load
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperr.BadRequest("cannot publish load, it is no longer in draft"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to publish load"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// CancelLoad cancels a draft or published load. On a published load every
// pending bid is rejected (not deleted) and its truck hold released, all in
// one transaction with the status flip.
func (h *LoadHandler) CancelLoad(c *gin.Context) {
	load, err := h.findShipperLoad(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := load.CanBeCancelled(); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	_, err = withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		cursor, err := h.DB.Collection("bids").Find(sc, bson.M{"loadId": load.ID, "status": models.BidPending})
		if err != nil {
			return nil, err
		}
		var pendingBids []models.Bid
		if err := cursor.All(sc, &pendingBids); err != nil {
			return nil, err
		}

		for _, bid := range pendingBids {
			if err := h.Schedule.Release(sc, bid.TruckID, bid.ID); err != nil {
				return nil, err
			}
		}

		if len(pendingBids) > 0 {
			_, err = h.DB.Collection("bids").UpdateMany(sc,
				bson.M{"loadId": load.ID, "status": models.BidPending},
				bson.M{"$set": bson.M{"status": models.BidRejected, "updatedAt": time.Now()}},
			)
			if err != nil {
				return nil, err
			}
		}

		_, err = h.DB.Collection("loads").UpdateOne(sc,
			bson.M{"_id": load.ID},
			bson.M{"$set": bson.M{"status": models.LoadCancelled, "updatedAt": time.Now()}},
		)
		return nil, err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Load cancelled"})
}

// GetLoadBids lists all bids on one of the shipper's loads.
func (h *LoadHandler) GetLoadBids(c *gin.Context) {
	load, err := h.findShipperLoad(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	page, limit := paginationParams(c)
	filter := bson.M{"loadId": load.ID}
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

// AcceptBid accepts a bid through the load-scoped route.
func (h *LoadHandler) AcceptBid(c *gin.Context) {
	result, err := acceptBid(c, h.DB, h.Schedule, h.Hub, c.Param("id"), c.Param("bidId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
