// Package metrics defines the metrics interfaces consumed by the
// reactor, worker pool, and block store, plus the package-level
// registry lifecycle (InitRegistry/IsEnabled/GetRegistry).
//
// Each domain interface (ReactorMetrics, WorkerPoolMetrics,
// BlockStoreMetrics) is implemented by pkg/metrics/prometheus, which
// registers its constructor here during package init to avoid an
// import cycle: this package cannot import prometheus's implementation
// package directly, since that package imports this one for the
// interface types.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	enabled  bool
	registry *prometheus.Registry
)

// InitRegistry enables metrics collection and creates the Prometheus
// registry that all Prometheus-backed metrics implementations register
// their collectors against. Safe to call more than once; subsequent
// calls are no-ops.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called. Metrics
// constructors (NewReactorMetrics, NewWorkerPoolMetrics,
// NewBlockStoreMetrics) return nil when this is false, giving zero
// overhead callers that never record a single metric.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the active Prometheus registry, or nil if
// InitRegistry has not been called.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
