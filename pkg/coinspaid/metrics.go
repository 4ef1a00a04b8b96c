package coinspaid

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records gateway call counts and latencies
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates unregistered gateway metrics
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "coinspaid",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total number of gateway requests by endpoint and response code",
			},
			[]string{"endpoint", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "coinspaid",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Gateway request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// Register adds the metrics to reg
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if err := reg.Register(m.RequestsTotal); err != nil {
		return err
	}
	return reg.Register(m.RequestDuration)
}

func (m *Metrics) observe(endpoint Endpoint, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint.String(), code).Inc()
	m.RequestDuration.WithLabelValues(endpoint.String()).Observe(elapsed.Seconds())
}
