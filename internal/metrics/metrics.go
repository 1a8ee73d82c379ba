package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	attempts        *prometheus.CounterVec
	levelUps        prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progression_attempts_total",
				Help: "Attempt submissions by outcome",
			},
			[]string{"outcome"},
		),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "progression_level_ups_total",
			Help: "Level transitions granted by graded attempts",
		}),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
			},
			[]string{"method", "route", "status"},
		),
	}
	m.registry.MustRegister(m.attempts, m.levelUps, m.requestDuration)
	return m
}

func (m *Metrics) AttemptGraded(levelUps int) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues("graded").Inc()
	if levelUps > 0 {
		m.levelUps.Add(float64(levelUps))
	}
}

func (m *Metrics) AttemptBlocked() {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues("blocked").Inc()
}

func (m *Metrics) AttemptFailed() {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues("failed").Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
