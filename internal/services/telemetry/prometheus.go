package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector implements Collector for Prometheus
type PrometheusCollector struct {
	registry *prometheus.Registry

	cacheLookups   *prometheus.CounterVec
	cacheStores    prometheus.Counter
	computes       *prometheus.CounterVec
	computeLatency *prometheus.HistogramVec
	droppedRecords prometheus.Counter
	alerts         *prometheus.CounterVec
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewPrometheusCollector creates a collector registered on its own registry
func NewPrometheusCollector(namespace string) (*PrometheusCollector, error) {
	pc := &PrometheusCollector{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Result cache lookups by outcome",
			},
			[]string{"result"},
		),
		cacheStores: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_stores_total",
				Help:      "Payloads written to the result cache",
			},
		),
		computes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "computations_total",
				Help:      "Engine computations by path and status",
			},
			[]string{"path", "status"},
		),
		computeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "computation_duration_seconds",
				Help:      "Engine computation latency",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 0.1ms to ~3s
			},
			[]string{"path"},
		),
		droppedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_records_total",
				Help:      "Transaction records dropped for unparsable dates",
			},
		),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_total",
				Help:      "Alerts generated by severity",
			},
			[]string{"severity"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"route"},
		),
	}

	collectors := []prometheus.Collector{
		pc.cacheLookups,
		pc.cacheStores,
		pc.computes,
		pc.computeLatency,
		pc.droppedRecords,
		pc.alerts,
		pc.requests,
		pc.requestLatency,
	}
	for _, c := range collectors {
		if err := pc.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// Registry exposes the underlying registry
func (pc *PrometheusCollector) Registry() *prometheus.Registry {
	return pc.registry
}

// Handler serves the registry in the Prometheus exposition format
func (pc *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(pc.registry, promhttp.HandlerOpts{})
}

func (pc *PrometheusCollector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	pc.cacheLookups.WithLabelValues(result).Inc()
}

func (pc *PrometheusCollector) RecordCacheStore() {
	pc.cacheStores.Inc()
}

func (pc *PrometheusCollector) RecordCompute(path string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	pc.computes.WithLabelValues(path, status).Inc()
	pc.computeLatency.WithLabelValues(path).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) RecordDroppedRecords(n int) {
	if n > 0 {
		pc.droppedRecords.Add(float64(n))
	}
}

func (pc *PrometheusCollector) RecordAlerts(severity string, n int) {
	if n > 0 {
		pc.alerts.WithLabelValues(severity).Add(float64(n))
	}
}

func (pc *PrometheusCollector) RecordRequest(route string, status int, duration time.Duration) {
	pc.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	pc.requestLatency.WithLabelValues(route).Observe(duration.Seconds())
}
