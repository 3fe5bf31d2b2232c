package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/thermoflow/metric"
)

// schedulerMetrics tracks control-loop activity. A nil receiver disables all
// recording, so the scheduler works without a metrics registry.
type schedulerMetrics struct {
	ticksTotal      prometheus.Counter
	forwardedTotal  prometheus.Counter
	suppressedTotal prometheus.Counter
	lastOutput      prometheus.Gauge
}

func newSchedulerMetrics(registry *metric.MetricsRegistry) *schedulerMetrics {
	if registry == nil {
		return nil
	}

	m := &schedulerMetrics{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Total number of chain evaluations",
		}),
		forwardedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "scheduler",
			Name:      "forwarded_total",
			Help:      "Values forwarded to the sink",
		}),
		suppressedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "scheduler",
			Name:      "suppressed_total",
			Help:      "Values suppressed by the 2-decimal rounding policy",
		}),
		lastOutput: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "scheduler",
			Name:      "last_output",
			Help:      "Most recently forwarded value",
		}),
	}

	_ = registry.RegisterCounter("scheduler", "ticks_total", m.ticksTotal)
	_ = registry.RegisterCounter("scheduler", "forwarded_total", m.forwardedTotal)
	_ = registry.RegisterCounter("scheduler", "suppressed_total", m.suppressedTotal)
	_ = registry.RegisterGauge("scheduler", "last_output", m.lastOutput)

	return m
}

func (m *schedulerMetrics) recordTick() {
	if m == nil {
		return
	}
	m.ticksTotal.Inc()
}

func (m *schedulerMetrics) recordForwarded(value float64) {
	if m == nil {
		return
	}
	m.forwardedTotal.Inc()
	m.lastOutput.Set(value)
}

func (m *schedulerMetrics) recordSuppressed() {
	if m == nil {
		return
	}
	m.suppressedTotal.Inc()
}
