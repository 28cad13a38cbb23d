package prometheus

import (
	"time"

	"github.com/danejoe001/transfer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterReactorMetricsConstructor(newReactorMetrics)
}

type reactorMetrics struct {
	connectionsAccepted prometheus.Counter
	connectionsClosed   *prometheus.CounterVec
	activeConnections   prometheus.Gauge
	framesReceived      *prometheus.CounterVec
	bytesReceived       *prometheus.CounterVec
	framesSent          prometheus.Counter
	bytesSent           prometheus.Counter
	assemblyErrors      *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
}

func newReactorMetrics() metrics.ReactorMetrics {
	reg := metrics.GetRegistry()

	return &reactorMetrics{
		connectionsAccepted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "danejoe_reactor_connections_accepted_total",
			Help: "Total number of TCP connections accepted by the reactor.",
		}),
		connectionsClosed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "danejoe_reactor_connections_closed_total",
			Help: "Total number of connections closed, by reason.",
		}, []string{"reason"}),
		activeConnections: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "danejoe_reactor_active_connections",
			Help: "Current number of open connections.",
		}),
		framesReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "danejoe_reactor_frames_received_total",
			Help: "Total number of frames assembled from inbound bytes, by request type.",
		}, []string{"request_type"}),
		bytesReceived: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "danejoe_reactor_bytes_received_total",
			Help: "Total bytes read from client sockets, by request type.",
		}, []string{"request_type"}),
		framesSent: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "danejoe_reactor_frames_sent_total",
			Help: "Total number of frames written to client sockets.",
		}),
		bytesSent: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "danejoe_reactor_bytes_sent_total",
			Help: "Total bytes written to client sockets.",
		}),
		assemblyErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "danejoe_reactor_frame_assembly_errors_total",
			Help: "Total number of unrecoverable frame assembly errors, by reason.",
		}, []string{"reason"}),
		requestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name: "danejoe_reactor_request_duration_milliseconds",
			Help: "Time from frame-received to response-queued, by request type.",
			Buckets: []float64{
				0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000,
			},
		}, []string{"request_type"}),
	}
}

func (m *reactorMetrics) RecordConnectionAccepted() {
	if m == nil {
		return
	}
	m.connectionsAccepted.Inc()
}

func (m *reactorMetrics) RecordConnectionClosed(reason string) {
	if m == nil {
		return
	}
	m.connectionsClosed.WithLabelValues(reason).Inc()
}

func (m *reactorMetrics) SetActiveConnections(count int) {
	if m == nil {
		return
	}
	m.activeConnections.Set(float64(count))
}

func (m *reactorMetrics) RecordFrameReceived(requestType string, bytes int) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(requestType).Inc()
	m.bytesReceived.WithLabelValues(requestType).Add(float64(bytes))
}

func (m *reactorMetrics) RecordFrameSent(bytes int) {
	if m == nil {
		return
	}
	m.framesSent.Inc()
	m.bytesSent.Add(float64(bytes))
}

func (m *reactorMetrics) RecordFrameAssemblyError(reason string) {
	if m == nil {
		return
	}
	m.assemblyErrors.WithLabelValues(reason).Inc()
}

func (m *reactorMetrics) RecordRequestDuration(requestType string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(requestType).Observe(float64(d.Microseconds()) / 1000.0)
}
