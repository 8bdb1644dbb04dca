package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRentalCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RentalCreated()
	m.RentalCreated()
	m.RentalReturned(14)
	m.OutOfStock()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rentalsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rentalsReturned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outOfStock))
}

func TestObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTP("GET", "/api/movies", 200, 10*time.Millisecond)
	m.ObserveHTTP("GET", "/api/movies", 200, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/movies", "200")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RentalCreated()
	m.RentalReturned(2)
	m.OutOfStock()
	m.ObserveHTTP("GET", "/", 200, time.Millisecond)
}
