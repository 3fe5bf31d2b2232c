package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/thermoflow/metric"
)

// hubMetrics tracks broadcast activity. A nil receiver disables recording.
type hubMetrics struct {
	messagesTotal   prometheus.Counter
	broadcastsTotal prometheus.Counter
	prunedTotal     prometheus.Counter
	subscribers     prometheus.Gauge
}

func newHubMetrics(registry *metric.MetricsRegistry) *hubMetrics {
	if registry == nil {
		return nil
	}

	m := &hubMetrics{
		messagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "monitor",
			Name:      "messages_total",
			Help:      "Messages enqueued by stage emitters",
		}),
		broadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "monitor",
			Name:      "broadcasts_total",
			Help:      "Broadcast passes completed",
		}),
		prunedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metric.Namespace,
			Subsystem: "monitor",
			Name:      "pruned_total",
			Help:      "Observers removed after a failed write",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metric.Namespace,
			Subsystem: "monitor",
			Name:      "subscribers",
			Help:      "Currently connected observers",
		}),
	}

	_ = registry.RegisterCounter("monitor", "messages_total", m.messagesTotal)
	_ = registry.RegisterCounter("monitor", "broadcasts_total", m.broadcastsTotal)
	_ = registry.RegisterCounter("monitor", "pruned_total", m.prunedTotal)
	_ = registry.RegisterGauge("monitor", "subscribers", m.subscribers)

	return m
}

func (m *hubMetrics) recordMessage() {
	if m == nil {
		return
	}
	m.messagesTotal.Inc()
}

func (m *hubMetrics) recordBroadcast() {
	if m == nil {
		return
	}
	m.broadcastsTotal.Inc()
}

func (m *hubMetrics) recordPruned() {
	if m == nil {
		return
	}
	m.prunedTotal.Inc()
}

func (m *hubMetrics) setSubscribers(count int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(count))
}
