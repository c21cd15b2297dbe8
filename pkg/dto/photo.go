package dto

// GeometryResponse mirrors the submitted GeoJSON Point geometry.
type GeometryResponse struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// PropertiesResponse carries the upload-derived metadata of a stored photo.
type PropertiesResponse struct {
	CreatedAtUTC string `json:"created_at_utc"`
	MediaID      string `json:"media_id"`
	MediaURL     string `json:"media_url"`
}

// FeatureResponse is the enriched feature returned for a persisted
// submission and for each entry on the read path.
type FeatureResponse struct {
	ID         string             `json:"id,omitempty"`
	Type       string             `json:"type"`
	Geometry   GeometryResponse   `json:"geometry"`
	Properties PropertiesResponse `json:"properties"`
}

// ListResponse wraps a collection-typed read result.
type ListResponse struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ErrorResponse is the structured failure body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// WSPhotoEvent is a WebSocket message announcing an accepted submission.
type WSPhotoEvent struct {
	Type string          `json:"type"` // photo_accepted
	Data FeatureResponse `json:"data"`
}
