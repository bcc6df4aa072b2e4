package services

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts manager outcomes. A nil *Metrics records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "mutations_total",
			Help:      "Create, update and delete calls by resource and outcome.",
		}, []string{"resource", "action", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "snapshot_fallbacks_total",
			Help:      "Collections served from the snapshot cache after a failed fetch.",
		}, []string{"resource"}),
	}
	reg.MustRegister(m.mutations, m.fallbacks)
	return m
}

func (m *Metrics) mutation(resource, action string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutations.WithLabelValues(resource, action, outcome).Inc()
}

func (m *Metrics) fallback(resource string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(resource).Inc()
}
