// server/internal/models/common.go
package models

// GeoPoint is a plain lat/lng pair, e.g. {"lat": 33.5731, "lng": -7.5898}.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Location is a structured address with coordinates.
type Location struct {
	Address     string   `bson:"address" json:"address"`
	City        string   `bson:"city,omitempty" json:"city,omitempty"`
	Coordinates GeoPoint `bson:"coordinates" json:"coordinates"`
}

// Dimensions of a load, in the given unit (default meters).
type Dimensions struct {
	Length float64 `bson:"length" json:"length"`
	Width  float64 `bson:"width" json:"width"`
	Height float64 `bson:"height" json:"height"`
	Unit   string  `bson:"unit" json:"unit"`
}

// MediaPointer references a document stored on S3 (or a compatible service).
type MediaPointer struct {
	ID       string `bson:"id" json:"id"`
	URL      string `bson:"url" json:"url"`
	FileName string `bson:"fileName" json:"fileName"`
	FileType string `bson:"fileType" json:"fileType"`
}
