// server/internal/models/user.go
package models

import "time"

const (
	RoleShipper = "shipper"
	RoleCarrier = "carrier"
	RoleDriver  = "driver"
	RoleAdmin   = "admin"
)

type User struct {
	ID        string    `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email"`
	Password  string    `bson:"password" json:"-"`
	Role      string    `bson:"role" json:"role"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Shipper is the shipper-side profile of a user; loads are owned by it.
type Shipper struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	CompanyName string    `bson:"companyName" json:"companyName"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Carrier is the carrier-side profile; trucks, drivers and bids belong to it.
type Carrier struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	CompanyName string    `bson:"companyName" json:"companyName"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

type PasswordResetToken struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Token     string    `bson:"token" json:"-"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
