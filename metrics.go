package renderdoc

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every Prometheus collector the render service exposes,
// registered against its own per-instance registry rather than
// package-level globals, so multiple Pipelines in one process don't
// collide on metric names.
type Metrics struct {
	PoolActive  prometheus.Gauge
	PoolIdle    prometheus.Gauge
	PoolTracked prometheus.Gauge

	RendersTotal    *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec
	RendersInflight prometheus.Gauge

	QueueDepth         prometheus.Gauge
	QueueRetriesTotal  prometheus.Counter
	QueueDeadLetters   prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics builds and registers every collector against a fresh
// registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		PoolActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renderdoc_pool_active_browsers",
			Help: "Browsers currently leased out of the pool.",
		}),
		PoolIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renderdoc_pool_idle_browsers",
			Help: "Browsers sitting idle in the pool.",
		}),
		PoolTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renderdoc_pool_tracked_browsers",
			Help: "Total live browser instances, idle or leased.",
		}),
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "renderdoc_renders_total",
			Help: "Completed render requests by outcome.",
		}, []string{"outcome", "kind"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "renderdoc_render_duration_seconds",
			Help:    "End-to-end render duration, template parse through PDF bytes.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"outcome"}),
		RendersInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renderdoc_renders_inflight",
			Help: "Render requests currently executing.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renderdoc_queue_depth",
			Help: "Messages waiting in the render request queue.",
		}),
		QueueRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renderdoc_queue_retries_total",
			Help: "Retries issued after a retryable render failure.",
		}),
		QueueDeadLetters: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renderdoc_queue_dead_letters_total",
			Help: "Requests moved to the dead-letter path after exhausting retries.",
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.PoolActive, m.PoolIdle, m.PoolTracked,
		m.RendersTotal, m.RenderDuration, m.RendersInflight,
		m.QueueDepth, m.QueueRetriesTotal, m.QueueDeadLetters,
	)

	return m
}

// Registry returns the Prometheus registry backing this Metrics, for
// wiring into an HTTP /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) setPoolGauges(active, idle, tracked int) {
	if m == nil {
		return
	}
	m.PoolActive.Set(float64(active))
	m.PoolIdle.Set(float64(idle))
	m.PoolTracked.Set(float64(tracked))
}

func (m *Metrics) observeRender(kind, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RendersTotal.WithLabelValues(outcome, kind).Inc()
	m.RenderDuration.WithLabelValues(outcome).Observe(seconds)
}
