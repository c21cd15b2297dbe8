package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/treemap/internal/api"
	"github.com/your-org/treemap/internal/api/ws"
	"github.com/your-org/treemap/internal/config"
	"github.com/your-org/treemap/internal/models"
	"github.com/your-org/treemap/internal/moderation"
	"github.com/your-org/treemap/internal/observability"
	"github.com/your-org/treemap/internal/pipeline"
	"github.com/your-org/treemap/internal/queue"
	"github.com/your-org/treemap/internal/storage"
	"github.com/your-org/treemap/pkg/dto"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Local development keeps credentials in a .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting treemap API service", "port", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the document store
	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := storage.NewMongoStore(connectCtx, cfg.Mongo)
	connectCancel()
	if err != nil {
		slog.Error("connect to mongo", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := db.Close(closeCtx); err != nil {
			slog.Error("close mongo", "error", err)
		}
	}()

	// Connect to the media host
	mediaStore, err := storage.NewMinIOStore(cfg.Media)
	if err != nil {
		slog.Error("connect to media store", "error", err)
		os.Exit(1)
	}
	if err := mediaStore.EnsureBucket(ctx); err != nil {
		slog.Warn("ensure media bucket", "error", err)
	}

	moderator := moderation.NewClient(cfg.Moderation)

	// Accepted-photo event stream and live feed (optional)
	var (
		producer *queue.Producer
		events   pipeline.EventPublisher
		hub      *ws.Hub
	)
	if cfg.NATS.URL != "" {
		producer, err = queue.NewProducer(cfg.NATS.URL)
		if err != nil {
			slog.Error("connect to nats", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		if err := producer.EnsureStream(ctx); err != nil {
			slog.Warn("ensure nats stream", "error", err)
		}
		events = producer

		hub = ws.NewHub()
		go hub.Run()

		consumer, err := queue.NewConsumer(cfg.NATS.URL)
		if err != nil {
			slog.Error("create photo event consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		err = consumer.ConsumeAccepted(ctx, "api-live-feed", func(ctx context.Context, msg jetstream.Msg) error {
			var photo models.StoredPhoto
			if err := json.Unmarshal(msg.Data(), &photo); err != nil {
				return err
			}
			hub.BroadcastPhoto(&dto.WSPhotoEvent{
				Type: "photo_accepted",
				Data: toFeatureResponse(photo),
			})
			return nil
		})
		if err != nil {
			slog.Warn("start photo event consumer", "error", err)
		}
	}

	pipe := pipeline.New(moderator, mediaStore, db, events, pipeline.Config{
		UploadFolder: cfg.Media.Folder,
		UploadTags:   cfg.Media.Tags,
	})

	router := api.NewRouter(api.RouterConfig{
		APIKey:       cfg.Server.APIKey,
		CORSOrigins:  cfg.CORS.AllowedOrigins,
		RateLimitRPS: cfg.Server.RateLimitRPS,
		QueryWindow:  cfg.Query.Window(),
		Pipeline:     pipe,
		DB:           db,
		Media:        mediaStore,
		Producer:     producer,
		Hub:          hub,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("API server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down API server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("API server stopped")
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
