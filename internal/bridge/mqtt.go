//file: internal/bridge/mqtt.go
package bridge

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	mqttpaho "github.com/eclipse/paho.mqtt.golang"

	"topicmux/config"
	"topicmux/internal/logger"
	"topicmux/internal/metrics"
)

// MQTTHandler is invoked for every inbound message on a subscribed
// filter, with the concrete topic the message arrived on.
type MQTTHandler func(topicStr string, payload []byte)

// MQTTConn owns the bridge's single MQTT connection, mirroring the
// teacher's ConnectionManagerImpl connect/reconnect lifecycle but
// without the per-broker rule-processor plumbing the router needed and
// the bridge does not.
type MQTTConn struct {
	client    mqttpaho.Client
	logger    *logger.Logger
	metrics   *metrics.Metrics
	connected atomic.Bool
	onMessage MQTTHandler
}

// NewMQTTConn builds and connects an MQTT client from cfg. onMessage is
// invoked for every message delivered to a filter subscribed via
// Subscribe.
func NewMQTTConn(cfg *config.MQTTConfig, log *logger.Logger, m *metrics.Metrics, onMessage MQTTHandler) (*MQTTConn, error) {
	c := &MQTTConn{logger: log, metrics: m, onMessage: onMessage}

	opts := mqttpaho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(time.Minute)

	opts.OnConnect = c.handleConnect
	opts.OnConnectionLost = c.handleDisconnect
	opts.OnReconnecting = c.handleReconnecting

	if cfg.TLS != nil && cfg.TLS.Enable {
		tlsConfig, err := newTLSConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to build mqtt tls config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	c.client = mqttpaho.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker: %w", token.Error())
	}

	return c, nil
}

// Subscribe registers a filter with the broker; inbound messages are
// forwarded to the handler passed to NewMQTTConn.
func (c *MQTTConn) Subscribe(filter string, qos byte) error {
	token := c.client.Subscribe(filter, qos, func(_ mqttpaho.Client, msg mqttpaho.Message) {
		c.onMessage(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %q: %w", filter, token.Error())
	}
	return nil
}

// Publish sends payload to topicStr.
func (c *MQTTConn) Publish(topicStr string, payload []byte) error {
	if !c.connected.Load() {
		return fmt.Errorf("mqtt: not connected")
	}
	token := c.client.Publish(topicStr, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		if c.metrics != nil {
			c.metrics.IncActionsTotal("error")
		}
		return token.Error()
	}
	if c.metrics != nil {
		c.metrics.IncActionsTotal("success")
	}
	return nil
}

// IsConnected reports the current connection state.
func (c *MQTTConn) IsConnected() bool { return c.connected.Load() }

// Disconnect cleanly closes the connection.
func (c *MQTTConn) Disconnect() {
	c.logger.Info("disconnecting from mqtt broker")
	c.client.Disconnect(250)
}

func (c *MQTTConn) handleConnect(mqttpaho.Client) {
	c.logger.Info("mqtt client connected")
	c.connected.Store(true)
	if c.metrics != nil {
		c.metrics.SetMQTTConnectionStatus(true)
	}
}

func (c *MQTTConn) handleDisconnect(_ mqttpaho.Client, err error) {
	c.logger.Error("mqtt connection lost", "error", err)
	c.connected.Store(false)
	if c.metrics != nil {
		c.metrics.SetMQTTConnectionStatus(false)
	}
}

func (c *MQTTConn) handleReconnecting(mqttpaho.Client, *mqttpaho.ClientOptions) {
	c.logger.Info("mqtt client reconnecting")
	if c.metrics != nil {
		c.metrics.IncMQTTReconnects()
	}
}

func newTLSConfig(certFile, keyFile, caFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
