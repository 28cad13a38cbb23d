package prometheus

import (
	"strconv"
	"time"

	"github.com/danejoe001/transfer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterWorkerPoolMetricsConstructor(newWorkerPoolMetrics)
}

type workerPoolMetrics struct {
	jobsProcessed *prometheus.CounterVec
	jobsFailed    *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	queueDepth    prometheus.Gauge
}

func newWorkerPoolMetrics() metrics.WorkerPoolMetrics {
	reg := metrics.GetRegistry()

	return &workerPoolMetrics{
		jobsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "danejoe_workerpool_jobs_processed_total",
			Help: "Total number of inbound frames processed successfully, by worker.",
		}, []string{"worker_id"}),
		jobsFailed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "danejoe_workerpool_jobs_failed_total",
			Help: "Total number of inbound frames whose handler panicked, by worker.",
		}, []string{"worker_id"}),
		jobDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "danejoe_workerpool_job_duration_milliseconds",
			Help:    "Duration of a single handler invocation.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"worker_id"}),
		queueDepth: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "danejoe_workerpool_queue_depth",
			Help: "Current depth of the mailbox inbound queue.",
		}),
	}
}

func (m *workerPoolMetrics) RecordJobProcessed(workerID int, d time.Duration) {
	if m == nil {
		return
	}
	id := strconv.Itoa(workerID)
	m.jobsProcessed.WithLabelValues(id).Inc()
	m.jobDuration.WithLabelValues(id).Observe(float64(d.Microseconds()) / 1000.0)
}

func (m *workerPoolMetrics) RecordJobFailed(workerID int) {
	if m == nil {
		return
	}
	m.jobsFailed.WithLabelValues(strconv.Itoa(workerID)).Inc()
}

func (m *workerPoolMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}
