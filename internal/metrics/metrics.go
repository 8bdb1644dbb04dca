// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the HTTP and rental collectors.  All collectors are
// registered on the registry passed to New, so tests can use a fresh one.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	rentalsCreated  prometheus.Counter
	rentalsReturned prometheus.Counter
	outOfStock      prometheus.Counter
	rentalFees      prometheus.Histogram
}

// New registers the collectors on registry.
func New(registry prometheus.Registerer) *Metrics {
	f := promauto.With(registry)
	return &Metrics{
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vidly_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vidly_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rentalsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "vidly_rentals_created_total",
			Help: "Rentals opened",
		}),
		rentalsReturned: f.NewCounter(prometheus.CounterOpts{
			Name: "vidly_rentals_returned_total",
			Help: "Rentals returned",
		}),
		outOfStock: f.NewCounter(prometheus.CounterOpts{
			Name: "vidly_rentals_out_of_stock_total",
			Help: "Rental attempts rejected because the movie had no stock",
		}),
		rentalFees: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vidly_rental_fee",
			Help:    "Fees charged on return",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250, 500},
		}),
	}
}

// ObserveHTTP records one finished request.  route is the registered
// path pattern, never the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) RentalCreated() {
	if m != nil {
		m.rentalsCreated.Inc()
	}
}

func (m *Metrics) RentalReturned(fee float64) {
	if m != nil {
		m.rentalsReturned.Inc()
		m.rentalFees.Observe(fee)
	}
}

func (m *Metrics) OutOfStock() {
	if m != nil {
		m.outOfStock.Inc()
	}
}
