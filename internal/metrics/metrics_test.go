package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	assert.NoError(t, err)
	assert.NotNil(t, m)
}

func TestMetricsSetConnectionStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	assert.NoError(t, err)

	// Test setting connection status
	m.SetMQTTConnectionStatus(true)
	m.SetMQTTConnectionStatus(false)
	
	// Note: In a real integration test, we'd use prometheus's test utilities
	// to verify the actual metric values
}

func TestMetricsIncrementCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	assert.NoError(t, err)

	// Test various counter increments
	m.IncMessagesTotal("received")
	m.IncMessagesTotal("processed")
	m.IncMessagesTotal("error")
	m.IncRuleMatches()
	m.IncMQTTReconnects()
	m.IncActionsTotal("success")
	m.IncActionsTotal("error")
}

func TestMetricsCollectorSamplesIndexSegments(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	c := NewMetricsCollector(m, 10*time.Millisecond, func() float64 { return 7 })
	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.indexSegments) == 7
	}, time.Second, 10*time.Millisecond, "expected index_segments gauge to reach 7")
}
