// server/internal/cache/locations.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"freight-match-api-server/internal/models"

	"github.com/redis/go-redis/v9"
)

const locationTTL = 5 * time.Minute

// Locations caches the latest known position per shipment. The append-only
// location history remains the source of truth; this is a read-through
// snapshot so tracking reads do not hit Mongo on every poll.
type Locations struct {
	RDB *redis.Client
}

func locationKey(shipmentID string) string {
	return fmt.Sprintf("shipment:%s:location", shipmentID)
}

func (l *Locations) SetCurrent(ctx context.Context, shipmentID string, point models.GeoPoint) {
	if l == nil || l.RDB == nil {
		return
	}
	b, err := json.Marshal(point)
	if err != nil {
		return
	}
	if err := l.RDB.Set(ctx, locationKey(shipmentID), b, locationTTL).Err(); err != nil {
		fmt.Println("redis set error:", err)
	}
}

func (l *Locations) GetCurrent(ctx context.Context, shipmentID string) (*models.GeoPoint, bool) {
	if l == nil || l.RDB == nil {
		return nil, false
	}
	raw, err := l.RDB.Get(ctx, locationKey(shipmentID)).Result()
	if err != nil {
		return nil, false
	}
	var point models.GeoPoint
	if err := json.Unmarshal([]byte(raw), &point); err != nil {
		return nil, false
	}
	return &point, true
}
