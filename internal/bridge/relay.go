//file: internal/bridge/relay.go
package bridge

import (
	"fmt"

	"github.com/google/uuid"

	"topicmux/config"
	"topicmux/internal/logger"
	"topicmux/internal/metrics"
)

// Relay wires one MQTT connection to one NATS connection, forwarding
// messages in the directions each loaded RelayRule permits. The two
// Registry instances are the bridge's equivalent of the teacher's
// per-broker SubscriptionManager: mqttFilters answers "does this
// inbound MQTT topic need forwarding to NATS", natsFilters answers the
// mirror question for the NATS side.
type Relay struct {
	logger  *logger.Logger
	metrics *metrics.Metrics

	mqtt *MQTTConn
	nats *NATSConn

	mqttFilters *Registry
	natsFilters *Registry

	pool *dispatchPool
}

// NewRelay connects both legs and loads cfg's relay rules. If either
// side's client ID is empty, a random one is generated so repeated
// bridge restarts never collide on the broker.
func NewRelay(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*Relay, error) {
	r := &Relay{
		logger:      log,
		metrics:     m,
		mqttFilters: NewRegistry(m),
		natsFilters: NewRegistry(m),
		pool:        newDispatchPool(cfg.Processing.Workers, cfg.Processing.QueueSize),
	}

	mqttCfg := cfg.MQTT
	if mqttCfg.ClientID == "" {
		mqttCfg.ClientID = "topicmux-bridge-" + uuid.NewString()
	}
	natsCfg := cfg.NATS
	if natsCfg.ClientID == "" {
		natsCfg.ClientID = "topicmux-bridge-" + uuid.NewString()
	}

	mqttConn, err := NewMQTTConn(&mqttCfg, log, m, r.handleMQTTMessage)
	if err != nil {
		return nil, fmt.Errorf("relay: %w", err)
	}
	r.mqtt = mqttConn

	natsConn, err := NewNATSConn(&natsCfg, log, m, r.handleNATSMessage)
	if err != nil {
		mqttConn.Disconnect()
		return nil, fmt.Errorf("relay: %w", err)
	}
	r.nats = natsConn

	if err := r.loadRules(cfg.Relay.Rules); err != nil {
		r.Close()
		return nil, err
	}

	if m != nil {
		m.SetRulesActive(float64(len(cfg.Relay.Rules)))
	}

	return r, nil
}

func (r *Relay) loadRules(rules []config.RelayRule) error {
	for _, rule := range rules {
		switch rule.Direction {
		case config.DirectionMQTTToNATS, config.DirectionBoth:
			if err := r.mqttFilters.AddSubscription(rule.MQTTFilter, 0); err != nil {
				return fmt.Errorf("relay: rule %q: %w", rule.Name, err)
			}
			if err := r.mqtt.Subscribe(rule.MQTTFilter, 0); err != nil {
				return fmt.Errorf("relay: rule %q: %w", rule.Name, err)
			}
		}

		switch rule.Direction {
		case config.DirectionNATSToMQTT, config.DirectionBoth:
			if err := r.natsFilters.AddSubscription(rule.MQTTFilter, 0); err != nil {
				return fmt.Errorf("relay: rule %q: %w", rule.Name, err)
			}
			if err := r.nats.Subscribe(ToNATSSubject(rule.MQTTFilter)); err != nil {
				return fmt.Errorf("relay: rule %q: %w", rule.Name, err)
			}
		}
	}
	return nil
}

// handleMQTTMessage forwards an inbound MQTT publish to NATS if it
// matches a loaded mqtt2nats or bidirectional rule.
func (r *Relay) handleMQTTMessage(topicStr string, payload []byte) {
	if r.metrics != nil {
		r.metrics.IncMessagesTotal("mqtt_received")
	}

	matches := r.mqttFilters.Match(topicStr)
	if len(matches) == 0 {
		return
	}
	if r.metrics != nil {
		r.metrics.IncRuleMatches()
	}

	r.pool.submit(relayJob{
		publish: func() error { return r.nats.Publish(topicStr, payload) },
		onError: func(err error) {
			r.logger.Error("failed to relay mqtt message to nats", "topic", topicStr, "error", err)
			if r.metrics != nil {
				r.metrics.IncMessagesTotal("error")
			}
		},
	})
	if r.metrics != nil {
		r.metrics.IncMessagesTotal("relayed")
	}
}

// handleNATSMessage forwards an inbound NATS message to MQTT if it
// matches a loaded nats2mqtt or bidirectional rule.
func (r *Relay) handleNATSMessage(topicStr string, payload []byte) {
	if r.metrics != nil {
		r.metrics.IncMessagesTotal("nats_received")
	}

	matches := r.natsFilters.Match(topicStr)
	if len(matches) == 0 {
		return
	}
	if r.metrics != nil {
		r.metrics.IncRuleMatches()
	}

	r.pool.submit(relayJob{
		publish: func() error { return r.mqtt.Publish(topicStr, payload) },
		onError: func(err error) {
			r.logger.Error("failed to relay nats message to mqtt", "topic", topicStr, "error", err)
			if r.metrics != nil {
				r.metrics.IncMessagesTotal("error")
			}
		},
	})
	if r.metrics != nil {
		r.metrics.IncMessagesTotal("relayed")
	}
}

// SegmentCount returns the total number of filters currently loaded
// across both directions, for periodic gauge sampling.
func (r *Relay) SegmentCount() float64 {
	return float64(r.mqttFilters.Len() + r.natsFilters.Len())
}

// Close drains the dispatch pool and disconnects both legs.
func (r *Relay) Close() {
	if r.pool != nil {
		r.pool.close()
	}
	if r.mqtt != nil {
		r.mqtt.Disconnect()
	}
	if r.nats != nil {
		r.nats.Disconnect()
	}
}
