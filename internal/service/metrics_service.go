package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	scansStarted    prometheus.Counter
	scansFinished   *prometheus.CounterVec
	scanDuration    prometheus.Observer
	scansRunning    prometheus.Gauge
	exportsTotal    *prometheus.CounterVec
}

// NewMetricsService registers the service collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	scansStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "policy_scans_started_total",
		Help: "Extension scans accepted",
	})

	scansFinished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_scans_finished_total",
		Help: "Extension scans by terminal state",
	}, []string{"state"})

	scanDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "policy_scan_duration_seconds",
		Help:    "Time from scan start to terminal state",
		Buckets: []float64{0.5, 1, 2, 3, 5, 10, 30, 60},
	})

	scansRunning := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "policy_scans_running",
		Help: "Extension scans currently in progress",
	})

	exportsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_exports_total",
		Help: "Generated document exports by format",
	}, []string{"format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups,
		scansStarted, scansFinished, scanDuration, scansRunning, exportsTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		scansStarted:    scansStarted,
		scansFinished:   scansFinished,
		scanDuration:    scanDuration,
		scansRunning:    scansRunning,
		exportsTotal:    exportsTotal,
	}
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache lookup and its latency.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ScanStarted counts an accepted scan.
func (m *MetricsService) ScanStarted() {
	if m == nil {
		return
	}
	m.scansStarted.Inc()
	m.scansRunning.Inc()
}

// ScanFinished records the terminal state of a scan.
func (m *MetricsService) ScanFinished(state string, duration time.Duration) {
	if m == nil {
		return
	}
	m.scansRunning.Dec()
	m.scansFinished.WithLabelValues(state).Inc()
	m.scanDuration.Observe(duration.Seconds())
}

// ExportGenerated counts a rendered export.
func (m *MetricsService) ExportGenerated(format string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
}
