// server/internal/api/handlers/user_handler.go
package handlers

import (
	"log"
	"net/http"
	"time"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/auth"
	"freight-match-api-server/internal/directory"
	"freight-match-api-server/internal/models"
	"freight-match-api-server/internal/notifier"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const resetTokenTTL = time.Hour

type UserHandler struct {
	DB            *mongo.Database
	Directory     *directory.Directory
	Notifier      *notifier.Notifier
	JWTSecret     []byte
	JWTExpiration time.Duration
}

type RegisterPayload struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role" binding:"required"`
	CompanyName string `json:"companyName" binding:"required"`
	Phone       string `json:"phone"`
}

type LoginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordPayload struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordPayload struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// Register creates a shipper or carrier account: the login and its role
// profile commit together. Drivers are not self-service; their carrier
// creates them.
func (h *UserHandler) Register(c *gin.Context) {
	var payload RegisterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.Role != models.RoleShipper && payload.Role != models.RoleCarrier {
		respondError(c, apperr.BadRequest("role must be shipper or carrier"))
		return
	}

	hashed, err := auth.HashPassword(payload.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	result, err := withTransaction(ctx, h.DB, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		user := models.User{
			ID:        newID("USR"),
			Email:     payload.Email,
			Password:  hashed,
			Role:      payload.Role,
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

		var profileID string
		switch payload.Role {
		case models.RoleShipper:
			shipper := models.Shipper{
				ID:          newID("SHP"),
				UserID:      user.ID,
				CompanyName: payload.CompanyName,
				Phone:       payload.Phone,
				CreatedAt:   now,
			}
			if _, err := h.DB.Collection("shippers").InsertOne(sc, shipper); err != nil {
				return nil, err
			}
			profileID = shipper.ID
		case models.RoleCarrier:
			carrier := models.Carrier{
				ID:          newID("CAR"),
				UserID:      user.ID,
				CompanyName: payload.CompanyName,
				Phone:       payload.Phone,
				CreatedAt:   now,
			}
			if _, err := h.DB.Collection("carriers").InsertOne(sc, carrier); err != nil {
				return nil, err
			}
			profileID = carrier.ID
		}

		return gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"role":      user.Role,
			"profileId": profileID,
		}, nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// resolveProfileID finds the domain profile id behind a user. Admins have no
// profile; their id doubles as the profile id.
func (h *UserHandler) resolveProfileID(c *gin.Context, user *models.User) (string, error) {
	ctx, cancel := opContext(c)
	defer cancel()

	switch user.Role {
	case models.RoleShipper:
		shipper, err := h.Directory.FindShipperByUser(ctx, user.ID)
		if err != nil {
			return "", err
		}
		return shipper.ID, nil
	case models.RoleCarrier:
		carrier, err := h.Directory.FindCarrierByUser(ctx, user.ID)
		if err != nil {
			return "", err
		}
		return carrier.ID, nil
	case models.RoleDriver:
		driver, err := h.Directory.FindDriverByUser(ctx, user.ID)
		if err != nil {
			return "", err
		}
		return driver.ID, nil
	}
	return user.ID, nil
}

// Login authenticates and issues a token carrying the resolved profile id,
// so core operations never re-derive it.
func (h *UserHandler) Login(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	err := h.DB.Collection("users").FindOne(ctx, bson.M{"email": payload.Email}).Decode(&user)
	if err != nil || !auth.CheckPasswordHash(payload.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account is deactivated"})
		return
	}

	profileID, err := h.resolveProfileID(c, &user)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateJWT(h.JWTSecret, user.ID, user.Role, profileID, h.JWTExpiration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"role":      user.Role,
			"profileId": profileID,
		},
	})
}

// GetMe returns the caller's identity as seen by the token.
func (h *UserHandler) GetMe(c *gin.Context) {
	ctx, cancel := opContext(c)
	defer cancel()

	var user models.User
	err := h.DB.Collection("users").FindOne(ctx, bson.M{"_id": c.GetString("user_id")}).Decode(&user)
	if err != nil {
		respondError(c, apperr.NotFound("user not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"role":      user.Role,
		"profileId": c.GetString("profile_id"),
	})
}

// ForgotPassword issues a reset token and hands it to the notification
// webhook. The response never reveals whether the email exists.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var payload ForgotPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	response := gin.H{"message": "If the email is registered, a reset link has been sent."}

	var user models.User
	err := h.DB.Collection("users").FindOne(ctx, bson.M{"email": payload.Email}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusOK, response)
		return
	}

	now := time.Now()
	reset := models.PasswordResetToken{
		ID:        newID("PRT"),
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now,
	}
	if _, err := h.DB.Collection("password_reset_tokens").InsertOne(ctx, reset); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reset token"})
		return
	}

	if err := h.Notifier.SendPasswordReset(ctx, user.Email, reset.Token); err != nil {
		log.Println("Failed to send password reset notification:", err)
	}

	c.JSON(http.StatusOK, response)
}

// ResetPassword consumes a reset token and sets the new password.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var payload ResetPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var reset models.PasswordResetToken
	err := h.DB.Collection("password_reset_tokens").FindOne(ctx, bson.M{
		"token":     payload.Token,
		"expiresAt": bson.M{"$gt": time.Now()},
	}).Decode(&reset)
	if err != nil {
		respondError(c, apperr.BadRequest("invalid or expired reset token"))
		return
	}

	hashed, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	if _, err := h.DB.Collection("users").UpdateOne(ctx,
		bson.M{"_id": reset.UserID},
		bson.M{"$set": bson.M{"password": hashed, "updatedAt": time.Now()}},
	); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}
	h.DB.Collection("password_reset_tokens").DeleteOne(ctx, bson.M{"_id": reset.ID})

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset."})
}
