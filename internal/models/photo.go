package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PointFeature is a GeoJSON Point feature submitted with a photo.
// Properties arrive empty; the submission pipeline fills them in after
// a successful upload.
type PointFeature struct {
	Type       string          `json:"type" bson:"type"`
	Geometry   PointGeometry   `json:"geometry" bson:"geometry"`
	Properties PhotoProperties `json:"properties" bson:"properties"`
}

type PointGeometry struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"` // [longitude, latitude]
}

// PhotoProperties holds the upload-derived metadata. All fields are unset on
// input and populated by the pipeline before persistence.
type PhotoProperties struct {
	CreatedAtUTC *time.Time `json:"created_at_utc,omitempty" bson:"created_at_utc,omitempty"`
	MediaID      string     `json:"media_id,omitempty" bson:"media_id,omitempty"`
	MediaURL     string     `json:"media_url,omitempty" bson:"media_url,omitempty"`
}

// StoredPhoto is the persisted form of an accepted submission. Created exactly
// once per successful submission and never mutated after insert.
type StoredPhoto struct {
	ID         bson.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Type       string          `json:"type" bson:"type"`
	Geometry   PointGeometry   `json:"geometry" bson:"geometry"`
	Properties PhotoProperties `json:"properties" bson:"properties"`
}

// ModerationResult is the verdict from the content safety service.
// Transient; produced once per submission and not persisted.
type ModerationResult struct {
	Flagged    bool
	AdultScore float64
	RacyScore  float64
}
