package netrouter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vyvo/netblank/pkg/neterr"
)

// Metrics counts request builds by outcome.
type Metrics struct {
	built  *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewMetrics registers the router collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		built: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netblank",
			Name:      "requests_built_total",
			Help:      "Requests built by the router, by variant and result.",
		}, []string{"variant", "result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netblank",
			Name:      "request_errors_total",
			Help:      "Failed request builds by error kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.built, m.errors)
	return m
}

// observe is safe on a nil *Metrics.
func (m *Metrics) observe(variant string, err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.built.WithLabelValues(variant, "ok").Inc()
		return
	}
	m.built.WithLabelValues(variant, "error").Inc()
	kind, ok := neterr.KindOf(err)
	if !ok {
		kind = "other"
	}
	m.errors.WithLabelValues(string(kind)).Inc()
}
