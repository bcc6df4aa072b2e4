package rest

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Scheduling API requests by resource, method and status code.",
		}, []string{"resource", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Scheduling API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

// observe records one request; status 0 means no response arrived.
func (m *Metrics) observe(resource, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(resource, method, code).Inc()
	m.duration.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}
