package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "well_registry"

// Metrics holds the Prometheus counters and histograms for the registry.
type Metrics struct {
	LocationWrites     *prometheus.CounterVec // labels: source={form,bulk,nwis}, action={created,updated,deleted}
	ValidationFailures *prometheus.CounterVec // labels: source={form,bulk,nwis}

	// Bulk upload metrics.
	BulkUploads *prometheus.CounterVec // labels: outcome={committed,rejected,failed}
	BulkRows    *prometheus.CounterVec // labels: outcome={inserted,error,warning}

	// NWIS site service metrics.
	NWISRequests *prometheus.CounterVec // labels: outcome={success,not_found,error}
	NWISDuration prometheus.Histogram

	// Change-event publishing.
	EventsPublished     prometheus.Counter
	EventPublishErrors  prometheus.Counter
	EventPublishEnabled prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		LocationWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_writes_total",
			Help:      "Committed monitoring location writes by source and action.",
		}, []string{"source", "action"}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Records rejected by validation, by source.",
		}, []string{"source"}),
		BulkUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_uploads_total",
			Help:      "Bulk upload files processed, by outcome.",
		}, []string{"outcome"}),
		BulkRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_rows_total",
			Help:      "Bulk upload rows processed, by outcome.",
		}, []string{"outcome"}),
		NWISRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nwis_requests_total",
			Help:      "NWIS site service requests by outcome.",
		}, []string{"outcome"}),
		NWISDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nwis_request_duration_seconds",
			Help:      "NWIS site service request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Change events written to the broker.",
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Change event batches that failed to publish.",
		}),
		EventPublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_publish_enabled",
			Help:      "1 when change events are published, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all registry metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.LocationWrites,
		m.ValidationFailures,
		m.BulkUploads,
		m.BulkRows,
		m.NWISRequests,
		m.NWISDuration,
		m.EventsPublished,
		m.EventPublishErrors,
		m.EventPublishEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
