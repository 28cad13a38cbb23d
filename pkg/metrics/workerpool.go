package metrics

import "time"

// WorkerPoolMetrics provides observability for the fixed-size request
// worker pool: job throughput, failures, and queue depth.
//
// Pass nil to disable metrics collection with zero overhead.
type WorkerPoolMetrics interface {
	// RecordJobProcessed records one inbound frame handled successfully.
	RecordJobProcessed(workerID int, d time.Duration)

	// RecordJobFailed records one inbound frame whose handler panicked.
	RecordJobFailed(workerID int)

	// SetQueueDepth updates the mailbox's current inbound queue depth.
	SetQueueDepth(depth int)
}

// NewWorkerPoolMetrics creates a Prometheus-backed WorkerPoolMetrics,
// or nil if InitRegistry has not been called.
func NewWorkerPoolMetrics() WorkerPoolMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusWorkerPoolMetrics()
}

var newPrometheusWorkerPoolMetrics func() WorkerPoolMetrics

// RegisterWorkerPoolMetricsConstructor registers the Prometheus
// worker-pool metrics constructor. Called from
// pkg/metrics/prometheus's init().
func RegisterWorkerPoolMetricsConstructor(constructor func() WorkerPoolMetrics) {
	newPrometheusWorkerPoolMetrics = constructor
}
