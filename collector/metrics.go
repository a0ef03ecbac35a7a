package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the collector's Prometheus instrumentation.
type Metrics struct {
	UploadsTotal    prometheus.Counter
	UploadsRejected *prometheus.CounterVec
	ReportsReceived *prometheus.CounterVec
	ReportsDropped  *prometheus.CounterVec
	SinkFailures    prometheus.Counter
	StoreDuration   prometheus.Histogram
}

// NewMetrics creates the collector metric set. The metrics are not
// registered anywhere; pass a Registerer to Register for that.
func NewMetrics() *Metrics {
	return &Metrics{
		UploadsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "reportstream",
				Subsystem: "collector",
				Name:      "uploads_total",
				Help:      "Total number of upload requests accepted for processing",
			},
		),

		UploadsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reportstream",
				Subsystem: "collector",
				Name:      "uploads_rejected_total",
				Help:      "Total number of upload requests rejected before decoding",
			},
			[]string{"reason"},
		),

		ReportsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reportstream",
				Subsystem: "collector",
				Name:      "reports_received_total",
				Help:      "Total number of well-formed reports received",
			},
			[]string{"type"},
		),

		ReportsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reportstream",
				Subsystem: "collector",
				Name:      "reports_dropped_total",
				Help:      "Total number of reports dropped from otherwise valid uploads",
			},
			[]string{"reason"},
		),

		SinkFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "reportstream",
				Subsystem: "collector",
				Name:      "sink_failures_total",
				Help:      "Total number of batches that could not be stored",
			},
		),

		StoreDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "reportstream",
				Subsystem: "collector",
				Name:      "store_duration_seconds",
				Help:      "Sink store duration in seconds, including retries",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// Register registers all collector metrics with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.UploadsTotal,
		m.UploadsRejected,
		m.ReportsReceived,
		m.ReportsDropped,
		m.SinkFailures,
		m.StoreDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
