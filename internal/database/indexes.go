// server/internal/database/indexes.go
package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the core invariants lean on. The partial
// unique index on bids backs the one-live-bid-per-(load, carrier) rule even
// if two create requests race past the application-level check.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("bids").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "loadId", Value: 1}, {Key: "carrierId", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": bson.A{"pending", "accepted"}},
			}),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("location_history").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "shipmentId", Value: 1}, {Key: "recordedAt", Value: -1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("shipments").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "driverId", Value: 1}, {Key: "status", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("trucks").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "licensePlate", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
