package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/your-org/treemap/internal/config"
	"github.com/your-org/treemap/internal/media"
	"github.com/your-org/treemap/internal/models"
)

// ErrUnavailable means no verdict could be obtained from the moderation
// service. The caller must treat this as blocking: no verdict never means
// "image approved".
var ErrUnavailable = errors.New("moderation service unavailable")

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(cfg config.ModerationConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

type evaluateResponse struct {
	Result                   bool    `json:"result"`
	AdultClassificationScore float64 `json:"adult_classification_score"`
	RacyClassificationScore  float64 `json:"racy_classification_score"`
}

// Evaluate re-encodes the image to JPEG and submits it to the moderation
// service. The minimum-dimension check is repeated here since Evaluate may be
// reached without going through media.Validate first. The staged temp file is
// removed on every exit path.
func (c *Client) Evaluate(ctx context.Context, img *media.Decoded) (models.ModerationResult, error) {
	if img.Width < media.MinDimension || img.Height < media.MinDimension {
		return models.ModerationResult{}, &media.TooSmallError{Width: img.Width, Height: img.Height}
	}

	tmp := filepath.Join(os.TempDir(), uuid.New().String()+".jpeg")
	defer os.Remove(tmp)

	if err := imaging.Save(img.Image, tmp); err != nil {
		return models.ModerationResult{}, fmt.Errorf("%w: stage image: %v", ErrUnavailable, err)
	}

	f, err := os.Open(tmp)
	if err != nil {
		return models.ModerationResult{}, fmt.Errorf("%w: open staged image: %v", ErrUnavailable, err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, f)
	if err != nil {
		return models.ModerationResult{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	if c.apiKey != "" {
		req.Header.Set(subscriptionKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.ModerationResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ModerationResult{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var out evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.ModerationResult{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	// The flagged decision is the service's; scores are returned raw for
	// audit logging only.
	return models.ModerationResult{
		Flagged:    out.Result,
		AdultScore: out.AdultClassificationScore,
		RacyScore:  out.RacyClassificationScore,
	}, nil
}
