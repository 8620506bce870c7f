//file: config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"topicmux/internal/topic"
)

// Direction selects which way a RelayRule's matched messages travel.
type Direction string

const (
	DirectionMQTTToNATS Direction = "mqtt2nats"
	DirectionNATSToMQTT Direction = "nats2mqtt"
	DirectionBoth       Direction = "bidirectional"
)

// Config is the root of the bridge's YAML configuration file.
type Config struct {
	MQTT       MQTTConfig    `yaml:"mqtt"`
	NATS       NATSConfig    `yaml:"nats"`
	Logging    LogConfig     `yaml:"logging"`
	Metrics    MetricsConfig `yaml:"metrics"`
	Processing ProcConfig    `yaml:"processing"`
	Relay      RelayConfig   `yaml:"relay"`
}

// MQTTConfig describes the bridge's single MQTT broker connection.
type MQTTConfig struct {
	Broker   string     `yaml:"broker"`
	ClientID string     `yaml:"clientId"`
	Username string     `yaml:"username"`
	Password string     `yaml:"password"`
	TLS      *TLSConfig `yaml:"tls,omitempty"`
}

// NATSConfig describes the bridge's single NATS connection.
type NATSConfig struct {
	URL      string     `yaml:"url"`
	ClientID string     `yaml:"clientId"`
	TLS      *TLSConfig `yaml:"tls,omitempty"`
}

// TLSConfig is shared between the MQTT and NATS legs.
type TLSConfig struct {
	Enable   bool   `yaml:"enable"`
	CertFile string `yaml:"certFile"`
	KeyFile  string `yaml:"keyFile"`
	CAFile   string `yaml:"caFile"`
}

// LogConfig configures internal/logger.NewLogger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Encoding   string `yaml:"encoding"`
	OutputPath string `yaml:"outputPath"`
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Address        string `yaml:"address"`
	Path           string `yaml:"path"`
	UpdateInterval string `yaml:"updateInterval"`
}

// ProcConfig sizes the bridge's relay dispatch pool.
type ProcConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queueSize"`
}

// RelayRule binds one MQTT topic filter to its NATS counterpart. Filter
// is validated with internal/topic's own validator, so the same wildcard
// grammar governs both config-time rules and the registry built from
// them at runtime.
type RelayRule struct {
	Name        string    `yaml:"name"`
	MQTTFilter  string    `yaml:"mqttFilter"`
	NATSSubject string    `yaml:"natsSubject,omitempty"`
	Direction   Direction `yaml:"direction"`
}

// RelayConfig is the ordered list of topic bridging rules.
type RelayConfig struct {
	Rules []RelayRule `yaml:"rules"`
}

// Load reads and parses a YAML config file, applying and validating
// defaults along the way.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.UpdateInterval == "" {
		c.Metrics.UpdateInterval = "15s"
	}
	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 4
	}
	if c.Processing.QueueSize <= 0 {
		c.Processing.QueueSize = 1000
	}
	for i, rule := range c.Relay.Rules {
		if rule.Direction == "" {
			c.Relay.Rules[i].Direction = DirectionBoth
		}
	}
}

// Validate checks structural invariants that applyDefaults cannot paper
// over: required addresses, well-formed topic filters, and known
// direction values.
func (c *Config) Validate() error {
	if c.MQTT.Broker == "" {
		return fmt.Errorf("config: mqtt.broker is required")
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("config: nats.url is required")
	}

	seen := make(map[string]bool, len(c.Relay.Rules))
	for _, rule := range c.Relay.Rules {
		if rule.Name == "" {
			return fmt.Errorf("config: relay rule missing name")
		}
		if seen[rule.Name] {
			return fmt.Errorf("config: duplicate relay rule name %q", rule.Name)
		}
		seen[rule.Name] = true

		if !topic.Validate(rule.MQTTFilter) {
			return fmt.Errorf("config: relay rule %q has invalid mqttFilter %q", rule.Name, rule.MQTTFilter)
		}
		switch rule.Direction {
		case DirectionMQTTToNATS, DirectionNATSToMQTT, DirectionBoth:
		default:
			return fmt.Errorf("config: relay rule %q has invalid direction %q", rule.Name, rule.Direction)
		}
	}

	return nil
}

// ApplyOverrides layers non-zero command-line flag values on top of the
// loaded configuration, matching the override precedence used by
// cmd/topicmux-bridge.
func (c *Config) ApplyOverrides(workers, queueSize int, metricsAddr, metricsPath string, metricsInterval time.Duration) {
	if workers > 0 {
		c.Processing.Workers = workers
	}
	if queueSize > 0 {
		c.Processing.QueueSize = queueSize
	}
	if metricsAddr != "" {
		c.Metrics.Address = metricsAddr
	}
	if metricsPath != "" {
		c.Metrics.Path = metricsPath
	}
	if metricsInterval > 0 {
		c.Metrics.UpdateInterval = metricsInterval.String()
	}
}
