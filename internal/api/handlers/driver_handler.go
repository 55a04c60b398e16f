// server/internal/api/handlers/driver_handler.go
package handlers

import (
	"net/http"
	"time"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/auth"
	"freight-match-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DriverHandler struct {
	DB *mongo.Database
}

type CreateDriverPayload struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
}

type UpdateDriverPayload struct {
	FirstName *string              `json:"firstName"`
	LastName  *string              `json:"lastName"`
	Phone     *string              `json:"phone"`
	Status    *models.DriverStatus `json:"status"`
}

func validDriverStatus(s models.DriverStatus) bool {
	switch s {
	case models.DriverAvailable, models.DriverAssigned, models.DriverInTransit, models.DriverOffDuty:
		return true
	}
	return false
}

// CreateDriver creates a driver login plus a driver profile under the
// calling carrier, in one transaction.
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var payload CreateDriverPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	carrierID := c.GetString("profile_id")

	ctx, cancel := opContext(c)
	defer cancel()

	hashed, err := auth.HashPassword(payload.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		user := models.User{
			ID:        newID("USR"),
			Email:     payload.Email,
			Password:  hashed,
			Role:      models.RoleDriver,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := h.DB.Collection("users").InsertOne(sc, user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, apperr.Conflict("email is already registered")
			}
			return nil, err
		}

		driver := models.Driver{
			ID:        newID("DRV"),
			UserID:    user.ID,
			CarrierID: carrierID,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Phone:     payload.Phone,
			Status:    models.DriverAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := h.DB.Collection("drivers").InsertOne(sc, driver); err != nil {
			return nil, err
		}
		return driver, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetMyDrivers lists the calling carrier's drivers.
func (h *DriverHandler) GetMyDrivers(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	filter := bson.M{"carrierId": c.GetString("profile_id")}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	page, limit := paginationParams(c)
	collection := h.DB.Collection("drivers")

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count drivers"})
		return
	}

	cursor, err := collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page-1)*limit).
		SetLimit(limit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query drivers"})
		return
	}
	defer cursor.Close(ctx)

	drivers := []models.Driver{}
	if err := cursor.All(ctx, &drivers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode drivers"})
		return
	}

	c.JSON(http.StatusOK, paginatedResponse(drivers, total, page, limit))
}

// GetDriver returns one driver belonging to the calling carrier.
func (h *DriverHandler) GetDriver(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	var driver models.Driver
	err := h.DB.Collection("drivers").FindOne(ctx, bson.M{
		"_id":       c.Param("id"),
		"carrierId": c.GetString("profile_id"),
	}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperr.NotFound("driver not found or does not belong to carrier"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query driver"})
		return
	}

	c.JSON(http.StatusOK, driver)
}

// UpdateDriver patches a driver's contact details or duty status.
func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	var payload UpdateDriverPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.Status != nil && !validDriverStatus(*payload.Status) {
		respondError(c, apperr.BadRequest("invalid driver status: %s", *payload.Status))
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if payload.FirstName != nil {
		set["firstName"] = *payload.FirstName
	}
	if payload.LastName != nil {
		set["lastName"] = *payload.LastName
	}
	if payload.Phone != nil {
		set["phone"] = *payload.Phone
	}
	if payload.Status != nil {
		set["status"] = *payload.Status
	}

	res := h.DB.Collection("drivers").FindOneAndUpdate(ctx,
		bson.M{"_id": c.Param("id"), "carrierId": c.GetString("profile_id")},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var driver models.Driver
	if err := res.Decode(&driver); err != nil {
		if err == mongo.ErrNoDocuments {
			respondError(c, apperr.NotFound("driver not found or does not belong to carrier"))
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update driver"})
		return
	}

	c.JSON(http.StatusOK, driver)
}
