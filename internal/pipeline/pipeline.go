package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/your-org/treemap/internal/geo"
	"github.com/your-org/treemap/internal/media"
	"github.com/your-org/treemap/internal/models"
	"github.com/your-org/treemap/internal/observability"
	"github.com/your-org/treemap/internal/storage"
)

// Moderator obtains a content-safety verdict for a decoded image.
type Moderator interface {
	Evaluate(ctx context.Context, img *media.Decoded) (models.ModerationResult, error)
}

// EventPublisher announces accepted submissions. Optional; publish failures
// never affect the submission outcome.
type EventPublisher interface {
	PublishAccepted(ctx context.Context, photo models.StoredPhoto) error
}

// Config holds the per-upload parameters passed to the media host.
type Config struct {
	UploadFolder string
	UploadTags   []string
}

// Pipeline orchestrates one photo submission: geofence check, image
// validation, moderation, media upload, metadata persist — in that order,
// with a compensating delete of the upload if persistence fails.
//
// A Pipeline holds no per-submission state and is safe for concurrent use.
type Pipeline struct {
	moderator Moderator
	media     storage.MediaStore
	metadata  storage.MetadataStore
	events    EventPublisher
	cfg       Config
}

func New(moderator Moderator, mediaStore storage.MediaStore, metadata storage.MetadataStore, events EventPublisher, cfg Config) *Pipeline {
	if cfg.UploadFolder == "" {
		cfg.UploadFolder = "yvr-user-photos"
	}
	if len(cfg.UploadTags) == 0 {
		cfg.UploadTags = []string{"user-photo"}
	}
	return &Pipeline{
		moderator: moderator,
		media:     mediaStore,
		metadata:  metadata,
		events:    events,
		cfg:       cfg,
	}
}

// Submit runs the full pipeline for one submission and returns the enriched,
// persisted feature. All failures are reported as *Error; no raw transport
// error crosses this boundary.
func (p *Pipeline) Submit(ctx context.Context, feature models.PointFeature, imageData []byte) (*models.StoredPhoto, error) {
	if err := geo.Validate(feature); err != nil {
		slog.Info("submission rejected by geofence", "reason", err.Error())
		observability.Submissions.WithLabelValues("rejected_geo").Inc()
		return nil, clientInputErr(err)
	}

	decoded, err := media.Validate(imageData)
	if err != nil {
		slog.Info("submission rejected by image validation", "reason", err.Error())
		observability.Submissions.WithLabelValues("rejected_image").Inc()
		return nil, clientInputErr(err)
	}

	verdict, err := p.moderator.Evaluate(ctx, decoded)
	if err != nil {
		var tooSmall *media.TooSmallError
		if errors.As(err, &tooSmall) {
			observability.Submissions.WithLabelValues("rejected_image").Inc()
			return nil, clientInputErr(err)
		}
		slog.Error("content moderation failed", "error", err)
		observability.Submissions.WithLabelValues("moderation_unavailable").Inc()
		return nil, &Error{Kind: KindDependencyUnavailable, Detail: "content moderation failed", Err: err}
	}

	if verdict.Flagged {
		slog.Info("moderation blocked an image",
			"adult_score", verdict.AdultScore,
			"racy_score", verdict.RacyScore,
		)
		observability.ModerationVerdicts.WithLabelValues("flagged").Inc()
		observability.Submissions.WithLabelValues("rejected_moderation").Inc()
		return nil, &Error{
			Kind:   KindContentRejected,
			Detail: "uploaded image was flagged as inappropriate for Treemap and will not be accepted",
		}
	}
	observability.ModerationVerdicts.WithLabelValues("clean").Inc()

	asset, err := p.media.Upload(ctx, imageData, p.cfg.UploadFolder, p.cfg.UploadTags)
	if err != nil {
		slog.Error("media upload failed", "error", err)
		observability.Submissions.WithLabelValues("upload_failed").Inc()
		return nil, &Error{Kind: KindDependencyUnavailable, Detail: "media upload failed", Err: err}
	}

	createdAt, err := time.Parse(time.RFC3339, asset.CreatedAt)
	if err != nil {
		// Unusable host timestamp means the document cannot be written;
		// same treatment as a failed persist.
		slog.Error("unparseable media host timestamp", "media_id", asset.ID, "created_at", asset.CreatedAt)
		p.rollback(ctx, asset.ID)
		observability.Submissions.WithLabelValues("persist_failed").Inc()
		return nil, &Error{Kind: KindPersistence, Detail: "persisting photo metadata failed", Err: err}
	}
	createdAt = createdAt.UTC()

	photo := models.StoredPhoto{
		Type:     feature.Type,
		Geometry: feature.Geometry,
		Properties: models.PhotoProperties{
			CreatedAtUTC: &createdAt,
			MediaID:      asset.ID,
			MediaURL:     asset.URL,
		},
	}

	result, err := p.metadata.InsertPhoto(ctx, photo)
	if err == nil && !result.Acknowledged {
		err = errors.New("insert not acknowledged by document store")
	}
	if err != nil {
		slog.Error("metadata persist failed", "media_id", asset.ID, "error", err)
		p.rollback(ctx, asset.ID)
		observability.Submissions.WithLabelValues("persist_failed").Inc()
		return nil, &Error{Kind: KindPersistence, Detail: "persisting photo metadata failed", Err: err}
	}

	if oid, err := bson.ObjectIDFromHex(result.ID); err == nil {
		photo.ID = oid
	}

	slog.Info("submission persisted", "media_id", asset.ID, "document_id", result.ID)
	observability.Submissions.WithLabelValues("accepted").Inc()

	if p.events != nil {
		if err := p.events.PublishAccepted(ctx, photo); err != nil {
			slog.Warn("publish accepted-photo event failed", "document_id", result.ID, "error", err)
		}
	}

	return &photo, nil
}

// rollback deletes the uploaded asset after a failed persist. A failed delete
// leaves an orphaned asset; that inconsistency is logged but does not change
// the error reported to the caller.
func (p *Pipeline) rollback(ctx context.Context, assetID string) {
	slog.Warn("rolling back uploaded media asset", "media_id", assetID)
	observability.MediaRollbacks.Inc()
	if err := p.media.Delete(ctx, assetID); err != nil {
		slog.Error("compensating delete failed, media asset may be orphaned",
			"media_id", assetID, "error", err)
	}
}
