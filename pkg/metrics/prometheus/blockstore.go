package prometheus

import (
	"time"

	"github.com/danejoe001/transfer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterBlockStoreMetricsConstructor(newBlockStoreMetrics)
}

type blockStoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
}

func newBlockStoreMetrics() metrics.BlockStoreMetrics {
	reg := metrics.GetRegistry()

	return &blockStoreMetrics{
		operations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "danejoe_blockstore_operations_total",
			Help: "Total block store operations, by backend, operation, and outcome.",
		}, []string{"backend", "operation", "status"}),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "danejoe_blockstore_operation_duration_milliseconds",
			Help: "Duration of block store operations, by backend and operation.",
			Buckets: []float64{
				0.5, 1, 5, 10, 50, 100, 500, 1000, 5000,
			},
		}, []string{"backend", "operation"}),
		bytes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "danejoe_blockstore_bytes_total",
			Help: "Total bytes transferred, by backend and direction.",
		}, []string{"backend", "direction"}),
	}
}

func (m *blockStoreMetrics) ObserveOperation(backend, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(backend, operation, status).Inc()
	m.duration.WithLabelValues(backend, operation).Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *blockStoreMetrics) RecordBytes(backend, direction string, n int64) {
	if m == nil {
		return
	}
	m.bytes.WithLabelValues(backend, direction).Add(float64(n))
}
