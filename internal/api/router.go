package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/treemap/internal/api/handlers"
	"github.com/your-org/treemap/internal/api/ws"
	"github.com/your-org/treemap/internal/auth"
	"github.com/your-org/treemap/internal/queue"
	"github.com/your-org/treemap/internal/storage"
)

type RouterConfig struct {
	APIKey       string
	CORSOrigins  []string
	RateLimitRPS float64
	QueryWindow  time.Duration
	Pipeline     handlers.Submitter
	DB           *storage.MongoStore
	Media        *storage.MinIOStore
	Producer     *queue.Producer
	Hub          *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	// System endpoints (no auth, no rate limit)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.Media, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Hub != nil {
		r.GET("/ws", cfg.Hub.HandleWS)
	}

	treeH := handlers.NewTreeHandler()
	r.GET("/trees/:species", treeH.Describe)

	// Photo endpoints
	photoH := handlers.NewPhotoHandler(cfg.Pipeline, cfg.DB, cfg.QueryWindow)
	photo := r.Group("/photo")
	photo.Use(RateLimitMiddleware(cfg.RateLimitRPS))
	photo.Use(auth.APIKeyMiddleware(cfg.APIKey))
	photo.POST("/multi-part", photoH.Submit)
	photo.GET("/user-entry", photoH.List)

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	conf := cors.DefaultConfig()
	conf.AllowOrigins = origins
	conf.AllowMethods = []string{"GET", "POST"}
	return cors.New(conf)
}
