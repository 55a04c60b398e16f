// server/internal/api/handlers/truck_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/s3"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TruckHandler struct {
	DB       *mongo.Database
	Uploader *s3.Uploader
}

type CreateTruckPayload struct {
	LicensePlate string  `json:"licensePlate" binding:"required"`
	Type         string  `json:"type" binding:"required"`
	Capacity     float64 `json:"capacity" binding:"required"`
}

type UpdateTruckPayload struct {
	Type     *string             `json:"type"`
	Capacity *float64            `json:"capacity"`
	Status   *models.TruckStatus `json:"status"`
}

func validTruckStatus(s models.TruckStatus) bool {
	switch s {
	case models.TruckAvailable, models.TruckInMaintenance, models.TruckOutOfService:
		return true
	}
	return false
}

// CreateTruck registers a truck under the calling carrier's fleet.
func (h *TruckHandler) CreateTruck(c *gin.Context) {
	var payload CreateTruckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	now := time.Now()
	truck := models.Truck{
		ID:           newID("TRK"),
		CarrierID:    c.GetString("profile_id"),
		LicensePlate: payload.LicensePlate,
		Type:         payload.Type,
		Capacity:     payload.Capacity,
		Status:       models.TruckAvailable,
		Commitments:  []models.Commitment{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := h.DB.Collection("trucks").InsertOne(ctx, truck); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			respondError(c, apperr.Conflict("a truck with this license plate already exists"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create truck"})
		return
	}

	c.JSON(http.StatusCreated, truck)
}

// GetMyTrucks lists the calling carrier's fleet.
func (h *TruckHandler) GetMyTrucks(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	filter := bson.M{"carrierId": c.GetString("profile_id")}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	page, limit := paginationParams(c)
	collection := h.DB.Collection("trucks")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count trucks"})
		return
	}

	cursor, err := collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query trucks"})
		return
	}
	defer cursor.Close(ctx)

	trucks := []models.Truck{}
	if err := cursor.All(ctx, &trucks); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode trucks"})
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(trucks, total, page, limit))
}

func (h *TruckHandler) findCarrierTruck(c *gin.Context) (*models.Truck, error) {
	ctx, cancel := opContext(c)
	defer cancel()

	var truck models.Truck
	err := h.DB.Collection("trucks").FindOne(ctx, bson.M{
		"_id":       c.Param("id"),
		"carrierId": c.GetString("profile_id"),
	}).Decode(&truck)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("truck not found or does not belong to carrier")
		}
		return nil, err
	}
	return &truck, nil
}

// GetTruck returns one truck, including its committed schedule windows.
func (h *TruckHandler) GetTruck(c *gin.Context) {
	truck, err := h.findCarrierTruck(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, truck)
}

// UpdateTruck patches type, capacity or operational status. Status changes
// do not touch existing commitments; they only stop new ones.
func (h *TruckHandler) UpdateTruck(c *gin.Context) {
	var payload UpdateTruckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.Status != nil && !validTruckStatus(*payload.Status) {
		respondError(c, apperr.BadRequest("invalid truck status: %s", *payload.Status))
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if payload.Type != nil {
		set["type"] = *payload.Type
	}
	if payload.Capacity != nil {
		set["capacity"] = *payload.Capacity
	}
	if payload.Status != nil {
		set["status"] = *payload.Status
	}

	res := h.DB.Collection("trucks").FindOneAndUpdate(ctx,
		bson.M{"_id": c.Param("id"), "carrierId": c.GetString("profile_id")},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var truck models.Truck
	if err := res.Decode(&truck); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperr.NotFound("truck not found or does not belong to carrier"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update truck"})
		return
	}

	c.JSON(http.StatusOK, truck)
}

// UploadPhoto attaches a photo of the truck, stored on S3.
func (h *TruckHandler) UploadPhoto(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "file storage is not configured"})
		return
	}

	truck, err := h.findCarrierTruck(c)
	if err != nil {
		respondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	ctx, cancel := opContext(c)
	defer cancel()

	photoID := newID("PHOTO")
	objectKey := fmt.Sprintf("trucks/%s/%s%s", truck.ID, photoID, filepath.Ext(fileHeader.Filename))
	url, err := h.Uploader.UploadFile(ctx, file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	photo := models.MediaPointer{
		ID:       photoID,
		URL:      url,
		FileName: fileHeader.Filename,
		FileType: fileHeader.Header.Get("Content-Type"),
	}
	if _, err := h.DB.Collection("trucks").UpdateOne(ctx,
		bson.M{"_id": truck.ID},
		bson.M{"$push": bson.M{"photos": photo}, "$set": bson.M{"updatedAt": time.Now()}},
	); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo reference"})
		return
	}

	c.JSON(http.StatusCreated, photo)
}
