package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// prometheus metrics
type metrics struct {
	planCount          *prometheus.CounterVec
	planDuration       *prometheus.HistogramVec
	hotspots           prometheus.Gauge
	httpDuration       *prometheus.HistogramVec
	durationSummary    prometheus.Summary
	responseStatusCode *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		planCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dronepatrol",
			Name:      "plan_count",
			Help:      "The total number of planned patrol routes by mode and outcome",
		}, []string{"mode", "status"}),
		planDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dronepatrol",
			Name:      "plan_duration_seconds",
			Help:      "The duration of one patrol route computation",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"mode"}),
		hotspots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dronepatrol",
			Name:      "layout_hotspots",
			Help:      "The number of hotspots in the session layout",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dronepatrol",
			Name:      "request_duration_seconds",
			Help:      "The duration of request",
			Buckets:   []float64{0.05, 0.1, 0.15, 0.2, 0.25, 0.3},
		}, []string{"method", "path"}),
		durationSummary: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  "dronepatrol",
			Name:       "request_duration_summary_seconds",
			Help:       "The duration of request",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		responseStatusCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dronepatrol",
				Name:      "response_status_code",
				Help:      "The status code of http response",
			}, []string{"status", "method", "path"},
		),
	}
	reg.MustRegister(m.planCount, m.planDuration, m.hotspots, m.httpDuration, m.durationSummary, m.responseStatusCode)
	return m
}

func (m *metrics) observePlan(mode, status string, started time.Time) {
	m.planCount.WithLabelValues(mode, status).Inc()
	m.planDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// PromeHttpMiddleware labels requests with the matched chi route pattern, or the raw
// path when no route matched.
func PromeHttpMiddleware(m *metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseWriter(w)
			now := time.Now()

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			elapsed := time.Since(now).Seconds()
			m.httpDuration.With(prometheus.Labels{"method": r.Method, "path": path}).Observe(elapsed)
			m.responseStatusCode.With(prometheus.Labels{"status": strconv.Itoa(rw.statusCode), "method": r.Method, "path": path}).Inc()
			m.durationSummary.Observe(elapsed)
		})
	}
}
