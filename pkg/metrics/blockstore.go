package metrics

import "time"

// BlockStoreMetrics provides observability for pluggable block-byte
// storage backends (local disk or S3).
//
// Pass nil to disable metrics collection with zero overhead.
type BlockStoreMetrics interface {
	// ObserveOperation records a backend operation with its duration and outcome.
	//
	// operation is e.g. "Size", "ReadRange", "WriteRange".
	ObserveOperation(backend, operation string, d time.Duration, err error)

	// RecordBytes records bytes transferred for a read or write.
	//
	// direction is "read" or "write".
	RecordBytes(backend, direction string, bytes int64)
}

// NewBlockStoreMetrics creates a Prometheus-backed BlockStoreMetrics,
// or nil if InitRegistry has not been called.
func NewBlockStoreMetrics() BlockStoreMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusBlockStoreMetrics()
}

var newPrometheusBlockStoreMetrics func() BlockStoreMetrics

// RegisterBlockStoreMetricsConstructor registers the Prometheus
// block-store metrics constructor. Called from
// pkg/metrics/prometheus's init().
func RegisterBlockStoreMetricsConstructor(constructor func() BlockStoreMetrics) {
	newPrometheusBlockStoreMetrics = constructor
}
