package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sflbot",
			Name:      "events_total",
			Help:      "Gateway events handled, by outcome.",
		},
		[]string{"event", "outcome"},
	)
	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sflbot",
			Name:      "commands_total",
			Help:      "Prefix commands run, by outcome.",
		},
		[]string{"command", "outcome"},
	)
	moderationDeletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sflbot",
			Name:      "moderation_deletions_total",
			Help:      "Messages removed for containing the banned phrase.",
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sflbot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Liveness HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sflbot",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Liveness HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(events, commands, moderationDeletions, httpRequests, httpDuration)
	})
}

func outcome(ok bool) string {
	if ok {
		return "succeeded"
	}
	return "failed"
}

func RecordEvent(event string, ok bool) {
	Register()
	events.WithLabelValues(event, outcome(ok)).Inc()
}

func RecordCommand(command string, ok bool) {
	Register()
	commands.WithLabelValues(command, outcome(ok)).Inc()
}

func RecordModerationDeletion() {
	Register()
	moderationDeletions.Inc()
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	Register()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// Middleware counts every request served by a gin engine.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// Router exposes GET /metrics. It is served on its own port so the liveness
// listener keeps a single route.
func Router() *gin.Engine {
	Register()
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
