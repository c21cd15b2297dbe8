package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/your-org/treemap/internal/config"
)

// Asset is an uploaded image as known to the media host.
type Asset struct {
	ID        string
	URL       string
	CreatedAt string // host creation timestamp, RFC 3339
}

// MediaStore uploads and deletes durable media assets.
type MediaStore interface {
	// Upload stores data under folder with the given tags and returns the
	// host-assigned asset.
	Upload(ctx context.Context, data []byte, folder string, tags []string) (Asset, error)
	// Delete removes an asset. Deleting a nonexistent or already-deleted id
	// is not an error; Delete is the pipeline's compensating action.
	Delete(ctx context.Context, id string) error
}

// MinIOStore is the MinIO-backed MediaStore.
type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinIOStore(cfg config.MediaConfig) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = cfg.Endpoint
	}

	return &MinIOStore{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: normalizeBaseURL(base),
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Upload stores the image and returns the host-assigned asset. The asset id
// includes the folder, so Delete can address the object from the id alone.
func (s *MinIOStore) Upload(ctx context.Context, data []byte, folder string, tags []string) (Asset, error) {
	id := newAssetID(folder)
	key := objectKey(id)

	opts := minio.PutObjectOptions{ContentType: "image/jpeg"}
	if len(tags) > 0 {
		opts.UserTags = map[string]string{"tags": strings.Join(tags, ",")}
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return Asset{}, fmt.Errorf("upload media %s: %w", key, err)
	}

	created := info.LastModified
	if created.IsZero() {
		created = time.Now()
	}

	return Asset{
		ID:        id,
		URL:       s.publicObjectURL(key),
		CreatedAt: created.UTC().Format(time.RFC3339),
	}, nil
}

// Delete removes the asset. MinIO treats removal of a missing object as
// success, which gives Delete the idempotence the rollback path relies on.
func (s *MinIOStore) Delete(ctx context.Context, id string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey(id), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete media %s: %w", id, err)
	}
	return nil
}

// Ping checks media host connectivity.
func (s *MinIOStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *MinIOStore) publicObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
}

func newAssetID(folder string) string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	if folder == "" {
		return raw
	}
	return strings.TrimSuffix(folder, "/") + "/" + raw
}

func objectKey(id string) string {
	return id + ".jpg"
}

func normalizeBaseURL(base string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return base
}
