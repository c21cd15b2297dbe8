package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treemap",
		Name:      "submissions_total",
		Help:      "Photo submissions by terminal outcome",
	}, []string{"outcome"})

	ModerationVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treemap",
		Name:      "moderation_verdicts_total",
		Help:      "Moderation verdicts returned by the content safety service",
	}, []string{"verdict"})

	MediaRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "treemap",
		Name:      "media_rollbacks_total",
		Help:      "Compensating deletes of uploaded media after a failed persist",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "treemap",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "treemap",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
