// server/internal/directory/directory.go
package directory

import (
	"context"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Directory maps user identities to their domain-role profiles. It is the
// one place the core goes through to turn "who is calling" into "which
// shipper/carrier/driver is acting".
type Directory struct {
	DB *mongo.Database
}

func (d *Directory) FindShipperByUser(ctx context.Context, userID string) (*models.Shipper, error) {
	var shipper models.Shipper
	err := d.DB.Collection("shippers").FindOne(ctx, bson.M{"userId": userID}).Decode(&shipper)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("shipper not found")
		}
		return nil, err
	}
	return &shipper, nil
}

func (d *Directory) FindCarrierByUser(ctx context.Context, userID string) (*models.Carrier, error) {
	var carrier models.Carrier
	err := d.DB.Collection("carriers").FindOne(ctx, bson.M{"userId": userID}).Decode(&carrier)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("carrier not found")
		}
		return nil, err
	}
	return &carrier, nil
}

func (d *Directory) FindDriverByUser(ctx context.Context, userID string) (*models.Driver, error) {
	var driver models.Driver
	err := d.DB.Collection("drivers").FindOne(ctx, bson.M{"userId": userID}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("driver not found")
		}
		return nil, err
	}
	return &driver, nil
}
