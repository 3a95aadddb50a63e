package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	importStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "import_started_total",
		Help: "Total imports started.",
	})
	importCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_completed_total",
		Help: "Total imports completed, by extraction path.",
	}, []string{"path"})
	importFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "import_failed_total",
		Help: "Total imports that failed extraction.",
	})
	importRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rejected_total",
		Help: "Total uploads rejected before reading, by reason.",
	}, []string{"reason"})
	importDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "import_duration_ms",
		Help:    "Import duration in milliseconds.",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2000, 5000, 10000},
	})

	jobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_jobs_total",
		Help: "Queue jobs handled by the worker, by outcome.",
	}, []string{"outcome"})

	loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Google sign-in callbacks, by outcome.",
	}, []string{"outcome"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "path", "status"})
)

func init() {
	registry.MustRegister(
		importStartedTotal,
		importCompletedTotal,
		importFailedTotal,
		importRejectedTotal,
		importDuration,
		jobsTotal,
		loginsTotal,
		httpRequestsTotal,
	)
}

// IncImportStarted increments the started counter.
func IncImportStarted() {
	importStartedTotal.Inc()
}

// IncImportCompleted increments the completed counter for the extraction path used.
func IncImportCompleted(path string) {
	importCompletedTotal.WithLabelValues(path).Inc()
}

// IncImportFailed increments the failed counter.
func IncImportFailed() {
	importFailedTotal.Inc()
}

// IncImportRejected counts an upload rejected for reason.
func IncImportRejected(reason string) {
	importRejectedTotal.WithLabelValues(reason).Inc()
}

// ObserveImportDurationMs records an import duration in milliseconds.
func ObserveImportDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	importDuration.Observe(value)
}

// Worker job outcomes.
const (
	JobReceived             = "received"
	JobCompleted            = "completed"
	JobFailed               = "failed"
	JobDeletedUnrecoverable = "deleted_unrecoverable"
)

// IncJob counts a worker job outcome.
func IncJob(outcome string) {
	jobsTotal.WithLabelValues(outcome).Inc()
}

// IncLogin counts a sign-in callback outcome.
func IncLogin(outcome string) {
	loginsTotal.WithLabelValues(outcome).Inc()
}

// Middleware counts requests by method, route pattern and status.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}

// SinceMs returns the milliseconds elapsed since start.
func SinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
