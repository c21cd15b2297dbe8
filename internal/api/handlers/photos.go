package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/treemap/internal/models"
	"github.com/your-org/treemap/internal/pipeline"
	"github.com/your-org/treemap/internal/storage"
	"github.com/your-org/treemap/pkg/dto"
)

// maxImageBytes caps the multipart image payload.
const maxImageBytes = 20 << 20 // 20 MB

// Submitter runs the submission pipeline for one photo.
type Submitter interface {
	Submit(ctx context.Context, feature models.PointFeature, imageData []byte) (*models.StoredPhoto, error)
}

type PhotoHandler struct {
	pipeline Submitter
	db       storage.MetadataStore
	window   time.Duration
}

func NewPhotoHandler(p Submitter, db storage.MetadataStore, window time.Duration) *PhotoHandler {
	return &PhotoHandler{pipeline: p, db: db, window: window}
}

// Submit accepts a multipart submission: a "feature" field holding the
// GeoJSON Point feature and an "image" file with the raw JPEG bytes.
func (h *PhotoHandler) Submit(c *gin.Context) {
	featureJSON := c.PostForm("feature")
	if featureJSON == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "bad request",
			Detail: "feature field is required",
		})
		return
	}

	var feature models.PointFeature
	if err := json.Unmarshal([]byte(featureJSON), &feature); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "bad request",
			Detail: "feature field must be a GeoJSON Point Feature",
		})
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "bad request",
			Detail: "image file is required",
		})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:  "server error",
			Detail: "reading the uploaded image failed",
		})
		return
	}

	photo, err := h.pipeline.Submit(c.Request.Context(), feature, imageData)
	if err != nil {
		writePipelineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toFeatureResponse(*photo))
}

// List returns stored photo features created within the configured window.
func (h *PhotoHandler) List(c *gin.Context) {
	photos, err := h.db.RecentPhotos(c.Request.Context(), h.window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:  "server error",
			Detail: "querying stored photos failed",
		})
		return
	}

	data := make([]dto.FeatureResponse, 0, len(photos))
	for _, p := range photos {
		data = append(data, toFeatureResponse(p))
	}

	c.JSON(http.StatusOK, dto.ListResponse{Type: "list", Data: data})
}

func writePipelineError(c *gin.Context, err error) {
	var perr *pipeline.Error
	if !errors.As(err, &perr) {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:  "server error",
			Detail: "photo submission failed",
		})
		return
	}

	switch perr.Kind {
	case pipeline.KindClientInput:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "bad request", Detail: perr.Detail})
	case pipeline.KindContentRejected:
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "unprocessable", Detail: perr.Detail})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "server error", Detail: perr.Detail})
	}
}

func toFeatureResponse(p models.StoredPhoto) dto.FeatureResponse {
	resp := dto.FeatureResponse{
		Type: p.Type,
		Geometry: dto.GeometryResponse{
			Type:        p.Geometry.Type,
			Coordinates: p.Geometry.Coordinates,
		},
		Properties: dto.PropertiesResponse{
			MediaID:  p.Properties.MediaID,
			MediaURL: p.Properties.MediaURL,
		},
	}
	if !p.ID.IsZero() {
		resp.ID = p.ID.Hex()
	}
	if p.Properties.CreatedAtUTC != nil {
		resp.Properties.CreatedAtUTC = p.Properties.CreatedAtUTC.UTC().Format(time.RFC3339)
	}
	return resp
}
