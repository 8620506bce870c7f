//file: cmd/topicmux-bridge/main.go
package main

import (
	"context"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"topicmux/config"
	"topicmux/internal/bridge"
	"topicmux/internal/logger"
	"topicmux/internal/metrics"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")

	workersOverride := flag.Int("workers", 0, "override number of relay dispatch workers (0 = use config)")
	queueSizeOverride := flag.Int("queue-size", 0, "override relay dispatch queue size (0 = use config)")
	metricsAddrOverride := flag.String("metrics-addr", "", "override metrics server address (empty = use config)")
	metricsPathOverride := flag.String("metrics-path", "", "override metrics endpoint path (empty = use config)")
	metricsIntervalOverride := flag.Duration("metrics-interval", 0, "override metrics collection interval (0 = use config)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	cfg.ApplyOverrides(
		*workersOverride,
		*queueSizeOverride,
		*metricsAddrOverride,
		*metricsPathOverride,
		*metricsIntervalOverride,
	)

	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	metricsService, err := metrics.NewMetrics(reg)
	if err != nil {
		log.Fatal("failed to create metrics service", "error", err)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			Registry:          reg,
			EnableOpenMetrics: true,
		}))

		metricsServer = &http.Server{
			Addr:    cfg.Metrics.Address,
			Handler: mux,
		}

		go func() {
			log.Info("starting metrics server",
				"address", cfg.Metrics.Address,
				"path", cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	relay, err := bridge.NewRelay(cfg, log, metricsService)
	if err != nil {
		log.Fatal("failed to start relay", "error", err)
	}

	var collector *metrics.MetricsCollector
	if cfg.Metrics.Enabled {
		interval, err := time.ParseDuration(cfg.Metrics.UpdateInterval)
		if err != nil {
			log.Fatal("invalid metrics update interval", "value", cfg.Metrics.UpdateInterval, "error", err)
		}
		collector = metrics.NewMetricsCollector(metricsService, interval, relay.SegmentCount)
		collector.Start()
	}

	log.Info("topicmux-bridge started",
		"mqttBroker", cfg.MQTT.Broker,
		"natsURL", cfg.NATS.URL,
		"relayRules", len(cfg.Relay.Rules),
		"metricsEnabled", cfg.Metrics.Enabled)

	sig := <-sigChan
	log.Info("received signal, shutting down", "signal", sig.String())

	if collector != nil {
		collector.Stop()
	}

	relay.Close()

	if cfg.Metrics.Enabled && metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown metrics server", "error", err)
		}
	}

	log.Info("shutdown complete")
}
