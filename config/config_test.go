//file: config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
mqtt:
  broker: "tcp://localhost:1883"
  clientId: "bridge-1"
nats:
  url: "nats://localhost:4222"
relay:
  rules:
    - name: sensors
      mqttFilter: "sensors/+/temperature"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	require.Len(t, cfg.Relay.Rules, 1)
	assert.Equal(t, DirectionBoth, cfg.Relay.Rules[0].Direction, "expected default direction")
	assert.Equal(t, "info", cfg.Logging.Level, "expected default log level")
	assert.Equal(t, 4, cfg.Processing.Workers, "expected default workers")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMissingBrokerAddresses(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
nats:
  url: "nats://localhost:4222"
`)
	_, err := Load(path)
	assert.Error(t, err, "expected error for missing mqtt.broker")
}

func TestLoadRejectsInvalidRelayFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
mqtt:
  broker: "tcp://localhost:1883"
nats:
  url: "nats://localhost:4222"
relay:
  rules:
    - name: bad
      mqttFilter: "a/#/b"
`)
	_, err := Load(path)
	assert.Error(t, err, "expected error for malformed mqttFilter")
}

func TestLoadRejectsDuplicateRuleNames(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
mqtt:
  broker: "tcp://localhost:1883"
nats:
  url: "nats://localhost:4222"
relay:
  rules:
    - name: dup
      mqttFilter: "a/#"
    - name: dup
      mqttFilter: "b/#"
`)
	_, err := Load(path)
	assert.Error(t, err, "expected error for duplicate relay rule names")
}

func TestLoadRejectsInvalidDirection(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
mqtt:
  broker: "tcp://localhost:1883"
nats:
  url: "nats://localhost:4222"
relay:
  rules:
    - name: r1
      mqttFilter: "a/#"
      direction: sideways
`)
	_, err := Load(path)
	assert.Error(t, err, "expected error for invalid direction")
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{
		Processing: ProcConfig{Workers: 4, QueueSize: 1000},
		Metrics:    MetricsConfig{Address: ":2112", Path: "/metrics", UpdateInterval: "15s"},
	}

	tests := []struct {
		name            string
		workers         int
		queueSize       int
		metricsAddr     string
		metricsPath     string
		metricsInterval time.Duration
		validate        func(*testing.T, *Config)
	}{
		{
			name:            "override all",
			workers:         8,
			queueSize:       2000,
			metricsAddr:     ":3000",
			metricsPath:     "/prometheus",
			metricsInterval: 30 * time.Second,
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, 8, c.Processing.Workers)
				assert.Equal(t, 2000, c.Processing.QueueSize)
				assert.Equal(t, ":3000", c.Metrics.Address)
				assert.Equal(t, "/prometheus", c.Metrics.Path)
				assert.Equal(t, "30s", c.Metrics.UpdateInterval)
			},
		},
		{
			name: "no overrides leave config untouched",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, 4, c.Processing.Workers)
				assert.Equal(t, ":2112", c.Metrics.Address)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testCfg := *cfg
			testCfg.ApplyOverrides(tt.workers, tt.queueSize, tt.metricsAddr, tt.metricsPath, tt.metricsInterval)
			tt.validate(t, &testCfg)
		})
	}
}
