//file: internal/bridge/nats_conn.go
package bridge

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"topicmux/config"
	"topicmux/internal/logger"
	"topicmux/internal/metrics"
)

// NATSHandler is invoked for every inbound NATS message, with the
// subject translated back into MQTT-topic form.
type NATSHandler func(topicStr string, payload []byte)

// NATSConn owns the bridge's single NATS connection, mirroring the
// teacher's NATS ConnectionManagerImpl lifecycle.
type NATSConn struct {
	conn      *nats.Conn
	logger    *logger.Logger
	metrics   *metrics.Metrics
	connected atomic.Bool
	onMessage NATSHandler
	subs      []*nats.Subscription
}

// NewNATSConn builds and connects a NATS client from cfg.
func NewNATSConn(cfg *config.NATSConfig, log *logger.Logger, m *metrics.Metrics, onMessage NATSHandler) (*NATSConn, error) {
	c := &NATSConn{logger: log, metrics: m, onMessage: onMessage}

	opts := []nats.Option{
		nats.Name(cfg.ClientID),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(c.handleDisconnect),
		nats.ReconnectHandler(c.handleReconnect),
		nats.ClosedHandler(c.handleClosed),
	}

	if cfg.TLS != nil && cfg.TLS.Enable {
		opts = append(opts, nats.ClientCert(cfg.TLS.CertFile, cfg.TLS.KeyFile))
		if cfg.TLS.CAFile != "" {
			opts = append(opts, nats.RootCAs(cfg.TLS.CAFile))
		}
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats server: %w", err)
	}

	c.conn = conn
	c.connected.Store(true)
	if c.metrics != nil {
		c.metrics.SetNATSConnectionStatus(true)
	}

	return c, nil
}

// Subscribe registers interest in subject (already in NATS '.'/'>'/'*'
// form); inbound messages are forwarded to the handler passed to
// NewNATSConn, with the subject translated back into MQTT topic form.
func (c *NATSConn) Subscribe(subject string) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		c.onMessage(ToMQTTTopic(msg.Subject), msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %q: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	return nil
}

// Publish sends payload to the NATS subject equivalent of topicStr.
func (c *NATSConn) Publish(topicStr string, payload []byte) error {
	if !c.connected.Load() {
		return fmt.Errorf("nats: not connected")
	}
	subject := ToNATSSubject(topicStr)
	if err := c.conn.Publish(subject, payload); err != nil {
		if c.metrics != nil {
			c.metrics.IncActionsTotal("error")
		}
		return err
	}
	if c.metrics != nil {
		c.metrics.IncActionsTotal("success")
	}
	return nil
}

// IsConnected reports the current connection state.
func (c *NATSConn) IsConnected() bool { return c.connected.Load() }

// Disconnect cleanly closes the connection.
func (c *NATSConn) Disconnect() {
	c.logger.Info("disconnecting from nats server")
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}

func (c *NATSConn) handleDisconnect(_ *nats.Conn, err error) {
	c.logger.Error("nats connection lost", "error", err)
	c.connected.Store(false)
	if c.metrics != nil {
		c.metrics.SetNATSConnectionStatus(false)
	}
}

func (c *NATSConn) handleReconnect(*nats.Conn) {
	c.logger.Info("nats client reconnected")
	c.connected.Store(true)
	if c.metrics != nil {
		c.metrics.SetNATSConnectionStatus(true)
	}
}

func (c *NATSConn) handleClosed(*nats.Conn) {
	c.logger.Info("nats connection closed")
	c.connected.Store(false)
	if c.metrics != nil {
		c.metrics.SetNATSConnectionStatus(false)
	}
}
