package monitoring

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Config defines metrics exporter settings.
type Config struct {
	Enabled     bool   `yaml:"enabled"`
	ListenAddr  string `yaml:"listen_addr"`
	MetricsPath string `yaml:"metrics_path"`
	Namespace   string `yaml:"namespace"`
}

// Metrics exposes the engine's operational counters over Prometheus.
type Metrics struct {
	logger   *zap.Logger
	config   Config
	registry *prometheus.Registry
	server   *http.Server

	computations    *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// New creates a metrics exporter with its own registry.
func New(logger *zap.Logger, config Config) *Metrics {
	if config.ListenAddr == "" {
		config.ListenAddr = ":9090"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.Namespace == "" {
		config.Namespace = "maintwise"
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		logger:   logger,
		config:   config,
		registry: registry,
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "computations_total",
			Help:      "Analytics computations by operation and outcome",
		}, []string{"operation", "outcome"}),
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "compute_duration_seconds",
			Help:      "Analytics computation latency by operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "cache_hits_total",
			Help:      "Prediction cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "cache_misses_total",
			Help:      "Prediction cache misses",
		}),
	}

	registry.MustRegister(m.computations, m.computeDuration, m.cacheHits, m.cacheMisses)
	return m
}

// Start serves the metrics endpoint until Stop is called. No-op when the
// exporter is disabled.
func (m *Metrics) Start() {
	if !m.config.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.MetricsPath, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{Addr: m.config.ListenAddr, Handler: mux}

	go func() {
		m.logger.Info("metrics exporter listening",
			zap.String("addr", m.config.ListenAddr),
			zap.String("path", m.config.MetricsPath),
		)
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("metrics exporter failed", zap.Error(err))
		}
	}()
}

// Stop shuts the metrics endpoint down.
func (m *Metrics) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// ObserveComputation records one finished computation.
func (m *Metrics) ObserveComputation(operation string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.computations.WithLabelValues(operation, outcome).Inc()
	m.computeDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// CacheHit counts one cache hit.
func (m *Metrics) CacheHit() { m.cacheHits.Inc() }

// CacheMiss counts one cache miss.
func (m *Metrics) CacheMiss() { m.cacheMisses.Inc() }
