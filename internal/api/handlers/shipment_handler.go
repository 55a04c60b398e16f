// server/internal/api/handlers/shipment_handler.go
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

type ShipmentHandler struct {
	DB       *mongo.Database
	Schedule *schedule.Store
	Hub      *socket.Hub
}

type AssignDriverPayload struct {
	DriverID string `json:"driverId" binding:"required"`
}

// broadcastStatus pushes a statusChanged event into the shipment's room.
func (h *ShipmentHandler) broadcastStatus(shipmentID string, status models.ShipmentStatus) {
	h.Hub.Broadcast(shipmentID, socket.Event{
		Event: "statusChanged",
		Data: map[string]interface{}{
			"shipmentId": shipmentID,
			"newStatus":  status,
			"timestamp":  time.Now(),
		},
	})
}

// AssignDriver puts one of the carrier's drivers on a scheduled shipment. The
// driver must be free of overlapping live shipments; the check spans
// [startDate, estimatedDeliveryDate) on both sides, so back-to-back trips on
// the same driver are allowed.
func (h *ShipmentHandler) AssignDriver(c *gin.Context) {
	var payload AssignDriverPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shipmentID := c.Param("id")
	carrierID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		var shipment models.Shipment
		err := h.DB.Collection("shipments").FindOne(sc, bson.M{"_id": shipmentID, "carrierId": carrierID}).Decode(&shipment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound("shipment not found or not owned by carrier")
			}
			return nil, err
		}
		if err := shipment.CanAssignDriver(); err != nil {
			return nil, err
		}

		var driver models.Driver
		err = h.DB.Collection("drivers").FindOne(sc, bson.M{"_id": payload.DriverID, "carrierId": carrierID}).Decode(&driver)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound("driver not found or does not belong to carrier")
			}
			return nil, err
		}

		// A driver's live schedule is their scheduled and in-transit
		// shipments; delayed ones still occupy the driver too.
		cursor, err := h.DB.Collection("shipments").Find(sc, bson.M{
			"driverId": driver.ID,
			"status":   bson.M{"$in": []models.ShipmentStatus{models.ShipmentScheduled, models.ShipmentInTransit, models.ShipmentDelayed}},
		})
		if err != nil {
			return nil, err
		}
		var live []models.Shipment
		if err := cursor.All(sc, &live); err != nil {
			return nil, err
		}
		for _, other := range live {
			if schedule.Overlaps(shipment.StartDate, shipment.EstimatedDeliveryDate, other.StartDate, other.EstimatedDeliveryDate) {
				return nil, apperr.BadRequest("driver already has a shipment scheduled in this time window")
			}
		}

		now := time.Now()
		res := h.DB.Collection("shipments").FindOneAndUpdate(sc,
			bson.M{"_id": shipment.ID, "status": models.ShipmentScheduled},
			bson.M{"$set": bson.M{"driverId": driver.ID, "updatedAt": now}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.Shipment
		if err := res.Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.BadRequest("driver can only be assigned while the shipment is scheduled")
			}
			return nil, err
		}

		if _, err := h.DB.Collection("drivers").UpdateOne(sc,
			bson.M{"_id": driver.ID},
			bson.M{"$set": bson.M{"status": models.DriverAssigned, "truckId": shipment.TruckID, "updatedAt": now}},
		); err != nil {
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

// findAssignedShipment loads a shipment and verifies the caller is its
// assigned driver.
func findAssignedShipment(sc mongo.SessionContext, db *mongo.Database, shipmentID, driverID string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := db.Collection("shipments").FindOne(sc, bson.M{"_id": shipmentID}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("shipment not found")
		}
		return nil, err
	}
	if shipment.DriverID != driverID {
		return nil, apperr.Forbidden("only the assigned driver can update this shipment")
	}
	return &shipment, nil
}

// StartShipment is the assigned driver reporting pickup. The shipment, the
// driver and the load all move to in_transit together.
func (h *ShipmentHandler) StartShipment(c *gin.Context) {
	shipmentID := c.Param("id")
	driverID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		shipment, err := findAssignedShipment(sc, h.DB, shipmentID, driverID)
		if err != nil {
			return nil, err
		}
		if err := shipment.CanBeStarted(); err != nil {
			return nil, err
		}

		now := time.Now()
		res := h.DB.Collection("shipments").FindOneAndUpdate(sc,
			bson.M{"_id": shipment.ID, "status": models.ShipmentScheduled},
			bson.M{"$set": bson.M{
				"status":          models.ShipmentInTransit,
				"actualStartDate": now,
				"updatedAt":       now,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.Shipment
		if err := res.Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.BadRequest("shipment must be in scheduled status to start")
			}
			return nil, err
		}

		if _, err := h.DB.Collection("drivers").UpdateOne(sc,
			bson.M{"_id": driverID},
			bson.M{"$set": bson.M{"status": models.DriverInTransit, "updatedAt": now}},
		); err != nil {
			return nil, err
		}
		if _, err := h.DB.Collection("loads").UpdateOne(sc,
			bson.M{"_id": shipment.LoadID},
			bson.M{"$set": bson.M{"status": models.LoadInTransit, "updatedAt": now}},
		); err != nil {
			return nil, err
		}

		return updated, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	shipment := result.(models.Shipment)
	h.broadcastStatus(shipment.ID, shipment.Status)
	c.JSON(http.StatusOK, shipment)
}

// DeliverShipment is the assigned driver reporting delivery. Works from
// scheduled, in_transit or delayed. The driver goes back to available unless
// they still have other scheduled shipments.
func (h *ShipmentHandler) DeliverShipment(c *gin.Context) {
	shipmentID := c.Param("id")
	driverID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		shipment, err := findAssignedShipment(sc, h.DB, shipmentID, driverID)
		if err != nil {
			return nil, err
		}
		if err := shipment.CanBeDelivered(); err != nil {
			return nil, err
		}

		now := time.Now()
		res := h.DB.Collection("shipments").FindOneAndUpdate(sc,
			bson.M{"_id": shipment.ID, "status": bson.M{"$in": []models.ShipmentStatus{
				models.ShipmentScheduled, models.ShipmentInTransit, models.ShipmentDelayed,
			}}},
			bson.M{"$set": bson.M{
				"status":             models.ShipmentDelivered,
				"actualDeliveryDate": now,
				"updatedAt":          now,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.Shipment
		if err := res.Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.BadRequest("cannot mark shipment as delivered from current status")
			}
			return nil, err
		}

		remaining, err := h.DB.Collection("shipments").CountDocuments(sc, bson.M{
			"driverId": driverID,
			"_id":      bson.M{"$ne": shipment.ID},
			"status":   models.ShipmentScheduled,
		})
		if err != nil {
			return nil, err
		}
		if _, err := h.DB.Collection("drivers").UpdateOne(sc,
			bson.M{"_id": driverID},
			bson.M{"$set": bson.M{"status": models.NextDriverStatusAfterDelivery(remaining), "updatedAt": now}},
		); err != nil {
			return nil, err
		}
		if _, err := h.DB.Collection("loads").UpdateOne(sc,
			bson.M{"_id": shipment.LoadID},
			bson.M{"$set": bson.M{"status": models.LoadDelivered, "updatedAt": now}},
		); err != nil {
			return nil, err
		}

		return updated, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	shipment := result.(models.Shipment)
	h.broadcastStatus(shipment.ID, shipment.Status)
	c.JSON(http.StatusOK, shipment)
}

// CancelShipment cancels a non-terminal shipment owned by the carrier and
// releases the winning bid's truck hold.
func (h *ShipmentHandler) CancelShipment(c *gin.Context) {
	shipmentID := c.Param("id")
	carrierID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		var shipment models.Shipment
		err := h.DB.Collection("shipments").FindOne(sc, bson.M{"_id": shipmentID, "carrierId": carrierID}).Decode(&shipment)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound("shipment not found or not owned by carrier")
			}
			return nil, err
		}
		if err := shipment.CanBeCancelled(); err != nil {
			return nil, err
		}

		now := time.Now()
		res := h.DB.Collection("shipments").FindOneAndUpdate(sc,
			bson.M{"_id": shipment.ID, "status": bson.M{"$nin": []models.ShipmentStatus{
				models.ShipmentDelivered, models.ShipmentCancelled,
			}}},
			bson.M{"$set": bson.M{"status": models.ShipmentCancelled, "updatedAt": now}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		)
		var updated models.Shipment
		if err := res.Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.BadRequest("cannot cancel shipment in a terminal status")
			}
			return nil, err
		}

		if err := h.Schedule.Release(sc, shipment.TruckID, shipment.BidID); err != nil {
			return nil, err
		}

		if shipment.DriverID != "" {
			if _, err := h.DB.Collection("drivers").UpdateOne(sc,
				bson.M{"_id": shipment.DriverID, "status": bson.M{"$ne": models.DriverOffDuty}},
				bson.M{"$set": bson.M{"status": models.DriverAvailable, "updatedAt": now}},
			); err != nil {
				return nil, err
			}
		}

		return updated, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	shipment := result.(models.Shipment)
	h.broadcastStatus(shipment.ID, shipment.Status)
	c.JSON(http.StatusOK, shipment)
}

// listShipments is shared by the shipper and carrier listing routes; the
// caller supplies the ownership filter.
func (h *ShipmentHandler) listShipments(c *gin.Context, filter bson.M) {
	ctx, cancel := opContext(c)
	defer cancel()

	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	page, limit := paginationParams(c)
	collection := h.DB.Collection("shipments")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count shipments"})
		return
	}

	cursor, err := collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query shipments"})
		return
	}
	defer cursor.Close(ctx)

	shipments := []models.Shipment{}
	if err := cursor.All(ctx, &shipments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode shipments"})
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(shipments, total, page, limit))
}

// GetShipperShipments lists shipments whose load belongs to the shipper.
func (h *ShipmentHandler) GetShipperShipments(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	cursor, err := h.DB.Collection("loads").Find(ctx,
		bson.M{"shipperId": c.GetString("profile_id")},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query loads"})
		return
	}
	var loads []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &loads); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode loads"})
		return
	}
	loadIDs := make([]string, 0, len(loads))
	for _, l := range loads {
		loadIDs = append(loadIDs, l.ID)
	}

	h.listShipments(c, bson.M{"loadId": bson.M{"$in": loadIDs}})
}

// GetCarrierShipments lists the calling carrier's shipments.
func (h *ShipmentHandler) GetCarrierShipments(c *gin.Context) {
	h.listShipments(c, bson.M{"carrierId": c.GetString("profile_id")})
}

// GetDriverShipments lists shipments assigned to the calling driver.
func (h *ShipmentHandler) GetDriverShipments(c *gin.Context) {
	h.listShipments(c, bson.M{"driverId": c.GetString("profile_id")})
}
