package workers

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PoolMetrics tracks the processing pool's throughput and saturation.
type PoolMetrics struct {
	InFlight  prometheus.Gauge
	Completed prometheus.Counter
	Skipped   prometheus.Counter
	Requeued  prometheus.Counter
}

// NewPoolMetrics creates and registers the pool metrics on the default
// Prometheus registry. Call at most once per process.
func NewPoolMetrics() *PoolMetrics {
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "orderflow",
		Subsystem: "worker",
		Name:      "tasks_in_flight",
		Help:      "Number of tasks currently being processed.",
	})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orderflow",
		Subsystem: "worker",
		Name:      "tasks_completed_total",
		Help:      "Total number of tasks processed and acknowledged.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orderflow",
		Subsystem: "worker",
		Name:      "tasks_skipped_total",
		Help:      "Total number of tasks acknowledged without processing because the order was missing.",
	})
	requeued := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "orderflow",
		Subsystem: "worker",
		Name:      "tasks_requeued_total",
		Help:      "Total number of tasks returned to the queue after a failure.",
	})

	prometheus.MustRegister(inFlight, completed, skipped, requeued)
	return &PoolMetrics{
		InFlight:  inFlight,
		Completed: completed,
		Skipped:   skipped,
		Requeued:  requeued,
	}
}

// NewUnregisteredPoolMetrics creates pool metrics without touching the
// default registry. Used in tests where several pools coexist.
func NewUnregisteredPoolMetrics() *PoolMetrics {
	return &PoolMetrics{
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tasks_in_flight",
		}),
		Completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasks_completed_total",
		}),
		Skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasks_skipped_total",
		}),
		Requeued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tasks_requeued_total",
		}),
	}
}
