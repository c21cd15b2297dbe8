package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/your-org/treemap/internal/config"
	"github.com/your-org/treemap/internal/models"
)

// InsertResult reports the outcome of a document insert.
type InsertResult struct {
	Acknowledged bool
	ID           string
}

// MetadataStore persists and queries photo-feature documents.
type MetadataStore interface {
	InsertPhoto(ctx context.Context, photo models.StoredPhoto) (InsertResult, error)
	// RecentPhotos returns documents whose created_at_utc is within the
	// window, in store-default order. No pagination cursor is guaranteed
	// stable across calls.
	RecentPhotos(ctx context.Context, window time.Duration) ([]models.StoredPhoto, error)
}

// MongoStore is the MongoDB-backed MetadataStore.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoStore(ctx context.Context, cfg config.MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) InsertPhoto(ctx context.Context, photo models.StoredPhoto) (InsertResult, error) {
	res, err := s.collection.InsertOne(ctx, photo)
	if err != nil {
		return InsertResult{}, fmt.Errorf("insert photo document: %w", err)
	}

	result := InsertResult{Acknowledged: res.Acknowledged}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		result.ID = oid.Hex()
	}
	return result, nil
}

func (s *MongoStore) RecentPhotos(ctx context.Context, window time.Duration) ([]models.StoredPhoto, error) {
	cutoff := time.Now().UTC().Add(-window)
	filter := bson.D{
		{Key: "properties.created_at_utc", Value: bson.D{{Key: "$gt", Value: cutoff}}},
	}

	cur, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query recent photos: %w", err)
	}

	var photos []models.StoredPhoto
	if err := cur.All(ctx, &photos); err != nil {
		return nil, fmt.Errorf("decode recent photos: %w", err)
	}
	return photos, nil
}

// Ping checks document store connectivity.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
