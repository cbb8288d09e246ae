package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the gallery API.
type Metrics struct {
	Registry *prometheus.Registry

	// Operations by op ("add", "reload", "delete") and status.
	Operations *prometheus.CounterVec

	OperationLatency *prometheus.HistogramVec

	Photos prometheus.Gauge
}

// NewMetrics creates metrics on a private registry, so several App
// instances can live in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gallery_operations_total",
				Help: "Total number of gallery operations",
			},
			[]string{"op", "status"}, // "success" or "error"
		),
		OperationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gallery_operation_duration_seconds",
				Help:    "Gallery operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		Photos: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gallery_photos",
			Help: "Number of photos in the gallery",
		}),
	}
}

// Record records a finished operation and the resulting gallery size.
func (m *Metrics) Record(op string, started time.Time, err error, photos int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.Operations.WithLabelValues(op, status).Inc()
	m.OperationLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
	m.Photos.Set(float64(photos))
}
