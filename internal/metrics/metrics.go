// Package metrics exposes transfer telemetry as Prometheus collectors. The
// engine reports through a small recorder interface, so headless tools that
// don't scrape anything simply pass nil.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TransferMetrics counts transfer operations and moved bytes. Implements the
// engine's MetricsRecorder.
type TransferMetrics struct {
	operationsTotal  *prometheus.CounterVec
	bytesTransferred *prometheus.CounterVec
}

// NewTransferMetrics registers the transfer collectors on reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewTransferMetrics(reg prometheus.Registerer) *TransferMetrics {
	return &TransferMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "files_client_operations_total",
				Help: "Total number of transfer operations by kind and status",
			},
			[]string{"operation", "status"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "files_client_bytes_transferred_total",
				Help: "Total content bytes moved over the wire by direction",
			},
			[]string{"direction"},
		),
	}
}

func (m *TransferMetrics) ObserveOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *TransferMetrics) AddBytes(direction string, n int64) {
	if n < 0 {
		return
	}
	m.bytesTransferred.WithLabelValues(direction).Add(float64(n))
}
