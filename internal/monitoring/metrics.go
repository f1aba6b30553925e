package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	ProductsReturned prometheus.Gauge

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the metrics with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_requests_total",
			Help: "The total number of inventory pipeline runs by outcome",
		}, []string{"outcome"}), // completed, fetch_failed, shape_error, no_products
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "inventory_upstream_fetch_duration_seconds",
			Help:    "Duration of upstream page fetches",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		ProductsReturned: factory.NewGauge(prometheus.GaugeOpts{
			Name: "inventory_products_returned",
			Help: "Number of products in the last successful inventory",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) ObserveRun(outcome string) {
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFetch(d time.Duration) {
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) SetProductsReturned(n int) {
	m.ProductsReturned.Set(float64(n))
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
