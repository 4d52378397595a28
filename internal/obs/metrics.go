package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	sessionResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_role_resolutions_total",
			Help: "Role resolution attempts grouped by outcome.",
		},
		[]string{"outcome"},
	)
)

// Init registers the service metrics with the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, sessionResolutions)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CountResolution records the outcome of a role resolution:
// "applied", "discarded" or "failed".
func CountResolution(outcome string) {
	sessionResolutions.WithLabelValues(outcome).Inc()
}

// CanonicalPath collapses identifier segments so metric labels stay low
// cardinality. Unknown paths are returned as-is.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "v1" {
		switch parts[1] {
		case "profiles":
			if len(parts) == 3 {
				return "/v1/profiles/:id"
			}
		case "users":
			if len(parts) == 4 && parts[3] == "roles" {
				return "/v1/users/:id/roles"
			}
		case "employees":
			if len(parts) == 3 {
				return "/v1/employees/:id"
			}
		case "engage":
			if len(parts) == 4 && parts[2] == "posts" {
				return "/v1/engage/posts/:id"
			}
			if len(parts) == 5 && parts[2] == "posts" {
				return "/v1/engage/posts/:id/" + parts[4]
			}
		}
	}
	return path
}

// Instrument wraps an HTTP handler with request counters and latency
// histograms.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for labelling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
