// Package metrics provides Prometheus instrumentation for the catalog.
//
// Wire it up once in internal/kernel/http.go:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	ResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Response body sizes in bytes.",
			Buckets:   []float64{100, 1_000, 10_000, 100_000, 1_000_000},
		},
		[]string{"method", "route"},
	)

	// DBQueryDuration tracks repository latency per operation
	// ("list", "get", "create", "update", "delete", "replace").
	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Duration of catalog store operations in seconds.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
		},
		[]string{"driver", "operation"},
	)

	// LoginAttempts counts logins by result: "success", "failure", "limited".
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by result.",
		},
		[]string{"result"},
	)

	ImagesUploaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "images",
		Name:      "uploaded_total",
		Help:      "Images accepted by the upload endpoint.",
	})
)

// DefaultRegistry holds every catalog metric plus Go and process collectors.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		ResponseSize,
		DBQueryDuration,
		LoginAttempts,
		ImagesUploaded,
	)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Middleware records duration, count, in-flight and response size per
// request. Requests are labelled with the matched chi route pattern, so
// /api/products/7 and /api/products/8 share one series.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := strconv.Itoa(rr.status)

			RequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, route, status).Inc()
			ResponseSize.WithLabelValues(r.Method, route).Observe(float64(rr.size))
		})
	}
}

// Handler exposes the registry on GET /metrics.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

// ObserveDBQuery records a store operation:
//
//	defer metrics.ObserveDBQuery("gorm", "list", time.Now())
func ObserveDBQuery(driver, operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
}

func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}
