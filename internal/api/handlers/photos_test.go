package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/your-org/treemap/internal/models"
	"github.com/your-org/treemap/internal/pipeline"
	"github.com/your-org/treemap/internal/storage"
	"github.com/your-org/treemap/pkg/dto"
)

type fakeSubmitter struct {
	photo *models.StoredPhoto
	err   error
}

func (f *fakeSubmitter) Submit(ctx context.Context, feature models.PointFeature, imageData []byte) (*models.StoredPhoto, error) {
	return f.photo, f.err
}

type fakeStore struct {
	photos []models.StoredPhoto
	err    error
}

func (f *fakeStore) InsertPhoto(ctx context.Context, photo models.StoredPhoto) (storage.InsertResult, error) {
	return storage.InsertResult{}, nil
}

func (f *fakeStore) RecentPhotos(ctx context.Context, window time.Duration) ([]models.StoredPhoto, error) {
	return f.photos, f.err
}

func storedPhoto(t *testing.T) *models.StoredPhoto {
	t.Helper()
	oid, err := bson.ObjectIDFromHex("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("object id fixture: %v", err)
	}
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.StoredPhoto{
		ID:   oid,
		Type: "Feature",
		Geometry: models.PointGeometry{
			Type:        "Point",
			Coordinates: []float64{-123.12, 49.25},
		},
		Properties: models.PhotoProperties{
			CreatedAtUTC: &created,
			MediaID:      "abc123",
			MediaURL:     "https://cdn/abc123.jpg",
		},
	}
}

func multipartSubmission(t *testing.T, featureJSON string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	if featureJSON != "" {
		if err := mw.WriteField("feature", featureJSON); err != nil {
			t.Fatalf("write feature field: %v", err)
		}
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "photo.jpg")
		if err != nil {
			t.Fatalf("create image part: %v", err)
		}
		if _, err := fw.Write(image); err != nil {
			t.Fatalf("write image part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func newTestRouter(h *PhotoHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/photo/multi-part", h.Submit)
	r.GET("/photo/user-entry", h.List)
	return r
}

const validFeatureJSON = `{"type":"Feature","geometry":{"type":"Point","coordinates":[-123.12,49.25]}}`

func TestSubmitReturnsEnrichedFeature(t *testing.T) {
	h := NewPhotoHandler(&fakeSubmitter{photo: storedPhoto(t)}, &fakeStore{}, 14*24*time.Hour)
	r := newTestRouter(h)

	body, contentType := multipartSubmission(t, validFeatureJSON, []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/photo/multi-part", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp dto.FeatureResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Properties.MediaID != "abc123" {
		t.Errorf("media_id = %q, want abc123", resp.Properties.MediaID)
	}
	if resp.Properties.MediaURL != "https://cdn/abc123.jpg" {
		t.Errorf("media_url = %q, want https://cdn/abc123.jpg", resp.Properties.MediaURL)
	}
	if resp.Properties.CreatedAtUTC != "2024-05-01T12:00:00Z" {
		t.Errorf("created_at_utc = %q, want 2024-05-01T12:00:00Z", resp.Properties.CreatedAtUTC)
	}
	if resp.ID != "507f1f77bcf86cd799439011" {
		t.Errorf("id = %q, want store-assigned id", resp.ID)
	}
}

func TestSubmitStatusByErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"client input", &pipeline.Error{Kind: pipeline.KindClientInput, Detail: "bad geometry"}, http.StatusBadRequest},
		{"content rejected", &pipeline.Error{Kind: pipeline.KindContentRejected, Detail: "flagged"}, http.StatusUnprocessableEntity},
		{"dependency unavailable", &pipeline.Error{Kind: pipeline.KindDependencyUnavailable, Detail: "moderation down"}, http.StatusInternalServerError},
		{"persistence", &pipeline.Error{Kind: pipeline.KindPersistence, Detail: "insert failed"}, http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewPhotoHandler(&fakeSubmitter{err: tc.err}, &fakeStore{}, 14*24*time.Hour)
			r := newTestRouter(h)

			body, contentType := multipartSubmission(t, validFeatureJSON, []byte("jpeg-bytes"))
			req := httptest.NewRequest(http.MethodPost, "/photo/multi-part", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.want, w.Body.String())
			}

			var resp dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Error == "" {
				t.Error("error body missing status class")
			}
		})
	}
}

func TestSubmitRequiresFeatureField(t *testing.T) {
	h := NewPhotoHandler(&fakeSubmitter{photo: storedPhoto(t)}, &fakeStore{}, 14*24*time.Hour)
	r := newTestRouter(h)

	body, contentType := multipartSubmission(t, "", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/photo/multi-part", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSubmitRequiresImageFile(t *testing.T) {
	h := NewPhotoHandler(&fakeSubmitter{photo: storedPhoto(t)}, &fakeStore{}, 14*24*time.Hour)
	r := newTestRouter(h)

	body, contentType := multipartSubmission(t, validFeatureJSON, nil)
	req := httptest.NewRequest(http.MethodPost, "/photo/multi-part", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSubmitRejectsMalformedFeatureJSON(t *testing.T) {
	h := NewPhotoHandler(&fakeSubmitter{photo: storedPhoto(t)}, &fakeStore{}, 14*24*time.Hour)
	r := newTestRouter(h)

	body, contentType := multipartSubmission(t, "{not json", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/photo/multi-part", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestListWrapsRecentPhotos(t *testing.T) {
	h := NewPhotoHandler(&fakeSubmitter{}, &fakeStore{photos: []models.StoredPhoto{*storedPhoto(t)}}, 14*24*time.Hour)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/photo/user-entry", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Type string                `json:"type"`
		Data []dto.FeatureResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != "list" {
		t.Errorf("type = %q, want list", resp.Type)
	}
	if len(resp.Data) != 1 || resp.Data[0].Properties.MediaID != "abc123" {
		t.Errorf("data = %+v, want one entry with media_id abc123", resp.Data)
	}
}

func TestListEmptyWindowReturnsEmptyData(t *testing.T) {
	h := NewPhotoHandler(&fakeSubmitter{}, &fakeStore{}, 14*24*time.Hour)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/photo/user-entry", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"data":[]`)) {
		t.Errorf("empty window should serialize as an empty list, got %s", w.Body.String())
	}
}

func TestListReportsStoreFailure(t *testing.T) {
	h := NewPhotoHandler(&fakeSubmitter{}, &fakeStore{err: errors.New("find failed")}, 14*24*time.Hour)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/photo/user-entry", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
