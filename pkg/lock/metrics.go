package lock

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps the Prometheus collectors the lock core exposes: grant/deny/
// timeout counters, active/blocked gauges, and blocking/hold duration
// histograms.
type Metrics struct {
	granted  *prometheus.CounterVec
	denied   *prometheus.CounterVec
	timedOut prometheus.Counter
	canceled prometheus.Counter

	activeLocks  *prometheus.GaugeVec
	blockedCount *prometheus.GaugeVec

	blockingDuration prometheus.Histogram
	holdDuration     prometheus.Histogram

	limitHits *prometheus.CounterVec
}

// NewMetrics creates and registers the lock core's collectors against reg.
// Pass prometheus.NewRegistry(), or nil to skip registration entirely.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		granted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_granted_total",
			Help: "Total number of lock requests granted, by type.",
		}, []string{"type"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_denied_total",
			Help: "Total number of lock requests denied, by final status.",
		}, []string{"status"}),
		timedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lock_wait_timeout_total",
			Help: "Total number of blocking lock waits that timed out.",
		}),
		canceled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lock_wait_cancelled_total",
			Help: "Total number of blocking lock waits cancelled by their owner.",
		}),
		activeLocks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lock_active",
			Help: "Current number of GRANTED lock records, by type.",
		}, []string{"type"}),
		blockedCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lock_blocked_waiters",
			Help: "Current number of requests parked per file handle.",
		}, []string{"handle"}),
		blockingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lock_blocking_duration_seconds",
			Help:    "Time spent parked waiting for a conflicting lock to release.",
			Buckets: prometheus.DefBuckets,
		}),
		holdDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lock_hold_duration_seconds",
			Help:    "Time a granted lock record was held before release.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 12),
		}),
		limitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lock_limit_exceeded_total",
			Help: "Total number of requests denied due to a configured limit.",
		}, []string{"limit"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.granted, m.denied, m.timedOut, m.canceled,
			m.activeLocks, m.blockedCount,
			m.blockingDuration, m.holdDuration, m.limitHits,
		)
	}
	return m
}

func (m *Metrics) observeGrant(t LockType) {
	if m == nil {
		return
	}
	m.granted.WithLabelValues(t.String()).Inc()
	m.activeLocks.WithLabelValues(t.String()).Inc()
}

func (m *Metrics) observeRelease(t LockType, held time.Duration) {
	if m == nil {
		return
	}
	m.activeLocks.WithLabelValues(t.String()).Dec()
	m.holdDuration.Observe(held.Seconds())
}

func (m *Metrics) observeDenied(status Status) {
	if m == nil {
		return
	}
	m.denied.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) observeTimeout() {
	if m == nil {
		return
	}
	m.timedOut.Inc()
}

func (m *Metrics) observeCancelled() {
	if m == nil {
		return
	}
	m.canceled.Inc()
}

func (m *Metrics) observeBlockingDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.blockingDuration.Observe(d.Seconds())
}

func (m *Metrics) setBlocked(handle FileHandle, n int) {
	if m == nil {
		return
	}
	m.blockedCount.WithLabelValues(string(handle)).Set(float64(n))
}

func (m *Metrics) observeLimitHit(limit string) {
	if m == nil {
		return
	}
	m.limitHits.WithLabelValues(limit).Inc()
}
