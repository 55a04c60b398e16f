// server/internal/tracking/authz.go
package tracking

import (
	"context"

	"freight-match-api-server/internal/apperr"
	"freight-match-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthorizeShipmentRead enforces the ownership scope on every tracking read:
// the shipper must own the load, the carrier must own the shipment, the
// driver must be the assigned driver. The profile id is the role-shaped
// domain id carried in the token. Returns the shipment on success.
func AuthorizeShipmentRead(ctx context.Context, db *mongo.Database, shipmentID, role, profileID string) (*models.Shipment, error) {
	var shipment models.Shipment
	err := db.Collection("shipments").FindOne(ctx, bson.M{"_id": shipmentID}).Decode(&shipment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound("shipment not found")
		}
		return nil, err
	}

	switch role {
	case models.RoleShipper:
		var load models.Load
		err := db.Collection("loads").FindOne(ctx, bson.M{"_id": shipment.LoadID, "shipperId": profileID}).Decode(&load)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.Forbidden("you can only track your own shipments")
			}
			return nil, err
		}
	case models.RoleCarrier:
		if shipment.CarrierID != profileID {
			return nil, apperr.Forbidden("you can only track your company shipments")
		}
	case models.RoleDriver:
		if shipment.DriverID == "" || shipment.DriverID != profileID {
			return nil, apperr.Forbidden("you can only track shipments assigned to you")
		}
	default:
		return nil, apperr.Forbidden("role %s cannot access tracking", role)
	}

	return &shipment, nil
}
