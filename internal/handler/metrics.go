package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the NichePulse backend.
var Metrics = struct {
	ClassificationsTotal *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	DBPoolActive         prometheus.GaugeFunc
	DBPoolIdle           prometheus.GaugeFunc
	RequestsInFlight     prometheus.Gauge
	CacheHits            prometheus.Counter
	CacheMisses          prometheus.Counter
	VisionCallDuration   prometheus.Histogram
	VisionCallErrors     prometheus.Counter
	AnalysisDuration     prometheus.Histogram
	QuotaChecks          *prometheus.CounterVec
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nichepulse_classifications_total",
			Help: "Total classifications resolved, by terminal method.",
		},
		[]string{"method"},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nichepulse_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nichepulse_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nichepulse_classification_cache_hits_total",
			Help: "Total classification cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nichepulse_classification_cache_misses_total",
			Help: "Total classification cache misses.",
		},
	)

	Metrics.VisionCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nichepulse_vision_call_duration_seconds",
			Help:    "Duration of vision model calls.",
			Buckets: prometheus.DefBuckets,
		},
	)

	Metrics.VisionCallErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nichepulse_vision_call_errors_total",
			Help: "Total failed vision model calls.",
		},
	)

	Metrics.AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nichepulse_analysis_duration_seconds",
			Help:    "Duration of niche analysis runs.",
			Buckets: prometheus.DefBuckets,
		},
	)

	Metrics.QuotaChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nichepulse_quota_checks_total",
			Help: "Total quota checks, by reported status.",
		},
		[]string{"status"},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "nichepulse_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "nichepulse_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.ClassificationsTotal,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.VisionCallDuration,
		Metrics.VisionCallErrors,
		Metrics.AnalysisDuration,
		Metrics.QuotaChecks,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case len(path) > 14 && path[:14] == "/api/channels/":
		return "/api/channels/:channelId"
	case len(path) > 11 && path[:11] == "/api/quota/":
		return "/api/quota/:feature"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
