package metrics

import "time"

// ReactorMetrics provides observability for the epoll reactor: accept
// rate, connection lifecycle, and frame/byte throughput.
//
// Pass nil to disable metrics collection with zero overhead.
type ReactorMetrics interface {
	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	// reason is "peer_closed", "error", or "idle_timeout".
	RecordConnectionClosed(reason string)

	// SetActiveConnections updates the current connection gauge.
	SetActiveConnections(count int)

	// RecordFrameReceived records one complete frame popped from the assembler.
	RecordFrameReceived(requestType string, bytes int)

	// RecordFrameSent records one complete frame written to a client socket.
	RecordFrameSent(bytes int)

	// RecordFrameAssemblyError records a frame the assembler rejected
	// (bad magic past resync budget, or over max message length).
	RecordFrameAssemblyError(reason string)

	// RecordRequestDuration records the time from frame-received to
	// response-queued for one request.
	RecordRequestDuration(requestType string, d time.Duration)
}

// NewReactorMetrics creates a Prometheus-backed ReactorMetrics, or nil
// if InitRegistry has not been called.
func NewReactorMetrics() ReactorMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusReactorMetrics()
}

// newPrometheusReactorMetrics is registered by
// pkg/metrics/prometheus/reactor.go's init(), avoiding an import cycle
// between this package and its Prometheus implementation.
var newPrometheusReactorMetrics func() ReactorMetrics

// RegisterReactorMetricsConstructor registers the Prometheus reactor
// metrics constructor. Called from pkg/metrics/prometheus's init().
func RegisterReactorMetricsConstructor(constructor func() ReactorMetrics) {
	newPrometheusReactorMetrics = constructor
}
