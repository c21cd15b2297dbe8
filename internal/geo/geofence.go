package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/your-org/treemap/internal/models"
)

// Service-area bounding box (Vancouver). All bounds are exclusive: a point
// exactly on the fence is rejected.
const (
	LatMin = 49.196
	LatMax = 49.34
	LonMin = -123.27
	LonMax = -123.01
)

var (
	ErrNotPointFeature = errors.New("endpoint only accepts GeoJSON Point Features")
	ErrBadCoordinates  = errors.New("coordinates must be a finite [longitude, latitude] pair")
)

// Contains reports whether the point lies strictly inside the service area.
func Contains(lon, lat float64) bool {
	return lat > LatMin && lat < LatMax && lon > LonMin && lon < LonMax
}

// Validate checks a submitted feature against the geofence. It is a pure
// predicate; a non-nil error carries the human-readable rejection reason.
func Validate(f models.PointFeature) error {
	if f.Type != "Feature" || f.Geometry.Type != "Point" {
		return ErrNotPointFeature
	}
	if len(f.Geometry.Coordinates) != 2 {
		return ErrBadCoordinates
	}

	lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
	if !isFinite(lon) || !isFinite(lat) {
		return ErrBadCoordinates
	}
	if !Contains(lon, lat) {
		return fmt.Errorf("point (%v, %v) is outside the accepted service area", lon, lat)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
