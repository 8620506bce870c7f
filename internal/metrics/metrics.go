//file: internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector exported by the bridge: broker
// connection state, per-direction message counts, relay rule activity,
// and the topic index's own insert/remove/match traffic.
type Metrics struct {
	mqttConnected *prometheus.GaugeVec
	natsConnected *prometheus.GaugeVec

	messagesTotal   *prometheus.CounterVec
	actionsTotal    *prometheus.CounterVec
	relayMatches    prometheus.Counter
	mqttReconnects  prometheus.Counter
	rulesActive     prometheus.Gauge

	indexSegments    prometheus.Gauge
	indexInserts     prometheus.Counter
	indexRemovals    prometheus.Counter
	indexRejections  prometheus.Counter
	matchEmissions   prometheus.Counter
}

// NewMetrics registers every collector against reg and returns the
// handle used by the rest of the bridge. Registration failure (e.g. a
// duplicate collector) is returned rather than panicking, matching the
// rest of this codebase's error-return convention.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		mqttConnected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "topicmux",
			Name:      "mqtt_connected",
			Help:      "Whether the bridge's MQTT connection is currently up (1) or down (0).",
		}, []string{"broker"}),
		natsConnected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "topicmux",
			Name:      "nats_connected",
			Help:      "Whether the bridge's NATS connection is currently up (1) or down (0).",
		}, []string{"url"}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicmux",
			Name:      "messages_total",
			Help:      "Messages observed by the bridge, labeled by stage.",
		}, []string{"stage"}),
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "topicmux",
			Name:      "publish_actions_total",
			Help:      "Relayed publish attempts, labeled by outcome.",
		}, []string{"outcome"}),
		relayMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmux",
			Name:      "relay_matches_total",
			Help:      "Number of times an inbound topic matched at least one relay rule.",
		}),
		mqttReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmux",
			Name:      "mqtt_reconnects_total",
			Help:      "Number of MQTT reconnect attempts.",
		}),
		rulesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "topicmux",
			Name:      "relay_rules_active",
			Help:      "Number of relay rules currently loaded.",
		}),
		indexSegments: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "topicmux",
			Name:      "index_segments",
			Help:      "Number of payload-bearing segments currently stored in the topic index.",
		}),
		indexInserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmux",
			Name:      "index_inserts_total",
			Help:      "Number of successful topic index insertions.",
		}),
		indexRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmux",
			Name:      "index_removals_total",
			Help:      "Number of topic index removals.",
		}),
		indexRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmux",
			Name:      "index_validation_rejections_total",
			Help:      "Number of topics or patterns rejected by the validator.",
		}),
		matchEmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "topicmux",
			Name:      "index_match_emissions_total",
			Help:      "Number of segments emitted across all MatchingIter calls.",
		}),
	}

	collectors := []prometheus.Collector{
		m.mqttConnected, m.natsConnected, m.messagesTotal, m.actionsTotal,
		m.relayMatches, m.mqttReconnects, m.rulesActive,
		m.indexSegments, m.indexInserts, m.indexRemovals, m.indexRejections, m.matchEmissions,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// SetMQTTConnectionStatus records whether the MQTT leg is connected.
func (m *Metrics) SetMQTTConnectionStatus(connected bool) {
	m.mqttConnected.WithLabelValues("default").Set(boolToFloat(connected))
}

// SetNATSConnectionStatus records whether the NATS leg is connected.
func (m *Metrics) SetNATSConnectionStatus(connected bool) {
	m.natsConnected.WithLabelValues("default").Set(boolToFloat(connected))
}

// IncMessagesTotal increments the message counter for the given pipeline
// stage (e.g. "received", "relayed", "error").
func (m *Metrics) IncMessagesTotal(stage string) {
	m.messagesTotal.WithLabelValues(stage).Inc()
}

// IncActionsTotal increments the publish-action counter for the given
// outcome (e.g. "success", "error").
func (m *Metrics) IncActionsTotal(outcome string) {
	m.actionsTotal.WithLabelValues(outcome).Inc()
}

// IncRuleMatches records that an inbound topic matched at least one
// relay rule.
func (m *Metrics) IncRuleMatches() {
	m.relayMatches.Inc()
}

// IncMQTTReconnects records an MQTT reconnect attempt.
func (m *Metrics) IncMQTTReconnects() {
	m.mqttReconnects.Inc()
}

// SetRulesActive sets the gauge of currently loaded relay rules.
func (m *Metrics) SetRulesActive(n float64) {
	m.rulesActive.Set(n)
}

// SetIndexSegments sets the gauge of payload-bearing segments currently
// stored in the topic index.
func (m *Metrics) SetIndexSegments(n float64) {
	m.indexSegments.Set(n)
}

// IncIndexInserts records a successful topic index insertion.
func (m *Metrics) IncIndexInserts() {
	m.indexInserts.Inc()
}

// IncIndexRemovals records a topic index removal.
func (m *Metrics) IncIndexRemovals() {
	m.indexRemovals.Inc()
}

// IncIndexRejections records a topic or pattern rejected by the
// validator.
func (m *Metrics) IncIndexRejections() {
	m.indexRejections.Inc()
}

// AddMatchEmissions adds n to the running total of segments emitted
// across all MatchingIter calls.
func (m *Metrics) AddMatchEmissions(n int) {
	m.matchEmissions.Add(float64(n))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// MetricsCollector periodically samples a slow-changing gauge that has
// no single call site to update it inline, such as the topic index's
// segment count. It mirrors the teacher's collector lifecycle: Start
// launches a background ticker, Stop cancels it and waits for the
// goroutine to exit.
type MetricsCollector struct {
	metrics  *Metrics
	interval time.Duration
	sample   func() float64
	stop     chan struct{}
	done     chan struct{}
}

// NewMetricsCollector builds a collector that calls sample every
// interval and records the result as the index segment gauge.
func NewMetricsCollector(m *Metrics, interval time.Duration, sample func() float64) *MetricsCollector {
	return &MetricsCollector{
		metrics:  m,
		interval: interval,
		sample:   sample,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the collector's background sampling loop.
func (c *MetricsCollector) Start() {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.metrics.SetIndexSegments(c.sample())
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop halts the sampling loop and waits for it to exit.
func (c *MetricsCollector) Stop() {
	close(c.stop)
	<-c.done
}
