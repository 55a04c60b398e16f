// server/internal/api/handlers/tracking_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/cache"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/socket"
	"freight-match-api-server/internal/tracking"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
	etaHistorySample    = 10
)

type TrackingHandler struct {
	DB    *mongo.Database
	Cache *cache.Locations
	Hub   *socket.Hub
}

type UpdateLocationPayload struct {
	TruckID  string   `json:"truckId"`
	Lat      float64  `json:"lat" binding:"required"`
	Lng      float64  `json:"lng" binding:"required"`
	Accuracy *float64 `json:"accuracy"`
	Heading  *float64 `json:"heading"`
	Speed    *float64 `json:"speed"`
	Notes    string   `json:"notes"`
}

// recentHistory returns the newest fixes first.
func recentHistory(ctx context.Context, db *mongo.Database, shipmentID string, limit int64) ([]models.LocationHistory, error) {
	cursor, err := db.Collection("location_history").Find(ctx,
		bson.M{"shipmentId": shipmentID},
		options.Find().SetSort(bson.D{{Key: "recordedAt", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	history := []models.LocationHistory{}
	if err := cursor.All(ctx, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// currentLocation resolves the freshest known position: the redis snapshot
// first, then the shipment document, then the truck document.
func (h *TrackingHandler) currentLocation(ctx context.Context, shipment *models.Shipment) *models.GeoPoint {
	if point, ok := h.Cache.GetCurrent(ctx, shipment.ID); ok {
		return point
	}
	if shipment.CurrentLocation != nil {
		return shipment.CurrentLocation
	}
	var truck models.Truck
	if err := h.DB.Collection("trucks").FindOne(ctx, bson.M{"_id": shipment.TruckID}).Decode(&truck); err == nil {
		return truck.CurrentLocation
	}
	return nil
}

// GetTrackingInfo returns the live picture of one shipment: current position,
// the last few fixes, an ETA projection and the route/driver/truck summary.
func (h *TrackingHandler) GetTrackingInfo(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	shipment, err := tracking.AuthorizeShipmentRead(ctx, h.DB, c.Param("shipmentId"),
		c.GetString("user_role"), c.GetString("profile_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var load models.Load
	if err := h.DB.Collection("loads").FindOne(ctx, bson.M{"_id": shipment.LoadID}).Decode(&load); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query load"})
		return
	}

	history, err := recentHistory(ctx, h.DB, shipment.ID, etaHistorySample)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query location history"})
		return
	}

	current := h.currentLocation(ctx, shipment)
	eta := tracking.EstimateArrival(current, load.Destination.Coordinates, history, time.Now())

	info := gin.H{
		"shipmentId":            shipment.ID,
		"status":                shipment.Status,
		"currentLocation":       current,
		"estimatedArrival":      eta,
		"estimatedDeliveryDate": shipment.EstimatedDeliveryDate,
		"recentHistory":         history,
		"route": gin.H{
			"origin":      load.Origin,
			"destination": load.Destination,
		},
	}

	var truck models.Truck
	if err := h.DB.Collection("trucks").FindOne(ctx, bson.M{"_id": shipment.TruckID}).Decode(&truck); err == nil {
		info["truck"] = gin.H{
			"id":           truck.ID,
			"licensePlate": truck.LicensePlate,
			"type":         truck.Type,
		}
	}
	if shipment.DriverID != "" {
		var driver models.Driver
		if err := h.DB.Collection("drivers").FindOne(ctx, bson.M{"_id": shipment.DriverID}).Decode(&driver); err == nil {
			info["driver"] = gin.H{
				"id":        driver.ID,
				"firstName": driver.FirstName,
				"lastName":  driver.LastName,
				"phone":     driver.Phone,
			}
		}
	}

	c.JSON(http.StatusOK, info)
}

// GetLocationHistory returns the shipment's fixes, newest first.
func (h *TrackingHandler) GetLocationHistory(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	shipment, err := tracking.AuthorizeShipmentRead(ctx, h.DB, c.Param("shipmentId"),
		c.GetString("user_role"), c.GetString("profile_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	_, limit := paginationParams(c)
	if c.Query("limit") == "" {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	history, err := recentHistory(ctx, h.DB, shipment.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query location history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"shipmentId": shipment.ID, "history": history})
}

// RecordLocation appends a fix for a shipment and fans it out. It is shared
// by the REST endpoint and the websocket updateLocation event: verify the
// caller is the assigned driver, append to history, refresh the truck and
// shipment snapshots, warm the cache, then broadcast.
func RecordLocation(ctx context.Context, db *mongo.Database, locCache *cache.Locations, hub *socket.Hub, shipmentID, driverID string, payload UpdateLocationPayload) (*models.LocationHistory, error) {
	var shipment models.Shipment
	err := db.Collection("shipments").FindOne(ctx, bson.M{"_id": shipmentID}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("shipment not found")
		}
		return nil, err
	}
	if shipment.DriverID == "" || shipment.DriverID != driverID {
		return nil, apperr.Forbidden("only the assigned driver can report locations for this shipment")
	}
	if payload.TruckID != "" && payload.TruckID != shipment.TruckID {
		return nil, apperr.Forbidden("truck does not match the shipment's assigned truck")
	}
	if shipment.IsTerminal() {
		return nil, apperr.BadRequest("cannot report locations for a %s shipment", shipment.Status)
	}

	now := time.Now()
	entry := models.LocationHistory{
		ID:         newID("LOC"),
		ShipmentID: shipment.ID,
		TruckID:    shipment.TruckID,
		Location: models.LocationPoint{
			Lat:      payload.Lat,
			Lng:      payload.Lng,
			Accuracy: payload.Accuracy,
			Heading:  payload.Heading,
			Speed:    payload.Speed,
		},
		Notes:      payload.Notes,
		RecordedAt: now,
		CreatedAt:  now,
	}
	if _, err := db.Collection("location_history").InsertOne(ctx, entry); err != nil {
		return nil, err
	}

	point := models.GeoPoint{Lat: payload.Lat, Lng: payload.Lng}
	if _, err := db.Collection("shipments").UpdateOne(ctx,
		bson.M{"_id": shipment.ID},
		bson.M{"$set": bson.M{"currentLocation": point, "updatedAt": now}},
	); err != nil {
		return nil, err
	}
	if _, err := db.Collection("trucks").UpdateOne(ctx,
		bson.M{"_id": shipment.TruckID},
		bson.M{"$set": bson.M{"currentLocation": point, "updatedAt": now}},
	); err != nil {
		return nil, err
	}

	locCache.SetCurrent(ctx, shipment.ID, point)

	update := map[string]interface{}{
		"shipmentId": shipment.ID,
		"truckId":    shipment.TruckID,
		"location":   entry.Location,
		"recordedAt": entry.RecordedAt,
	}
	hub.Broadcast(shipment.ID, socket.Event{Event: "locationUpdated", Data: update})
	hub.BroadcastAll(socket.Event{Event: "truckLocationUpdated", Data: update})

	return &entry, nil
}

// UpdateLocation is the REST fallback for drivers without a live websocket.
func (h *TrackingHandler) UpdateLocation(c *gin.Context) {
	var payload UpdateLocationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	entry, err := RecordLocation(ctx, h.DB, h.Cache, h.Hub, c.Param("shipmentId"), c.GetString("profile_id"), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}
