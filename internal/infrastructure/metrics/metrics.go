// Package metrics exposes callback, initiation and HTTP counters on a
// dedicated Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "paypoint"

type Collector struct {
	registry *prometheus.Registry

	callbacks        *prometheus.CounterVec
	callbackDuration *prometheus.HistogramVec
	initiations      *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewCollector builds a registry with the payment collectors plus the Go
// and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		callbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "callbacks_total", Help: "Payment callbacks by variant and pipeline exit stage."},
			[]string{"variant", "stage"},
		),
		callbackDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "callback_duration_seconds", Help: "Payment callback pipeline duration in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"variant", "stage"},
		),
		initiations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "payment_initiations_total", Help: "Gateway hand-offs by variant and result."},
			[]string{"variant", "result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests."},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"method", "path", "status"},
		),
	}

	c.registry.MustRegister(
		c.callbacks,
		c.callbackDuration,
		c.initiations,
		c.httpRequests,
		c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) ObserveCallback(variant string, stage string, elapsed time.Duration) {
	c.callbacks.WithLabelValues(variant, stage).Inc()
	c.callbackDuration.WithLabelValues(variant, stage).Observe(elapsed.Seconds())
}

func (c *Collector) ObserveInitiation(variant string, result string) {
	c.initiations.WithLabelValues(variant, result).Inc()
}

func (c *Collector) ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, path, status).Inc()
	c.httpDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
