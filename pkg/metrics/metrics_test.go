package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	return New(reg, reg)
}

func TestObserveHTTP(t *testing.T) {
	m := newTestMetrics()

	m.ObserveHTTP(http.MethodGet, "/api/laptops", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/laptops", http.StatusOK, 30*time.Millisecond)
	m.ObserveHTTP(http.MethodPost, "/api/orders", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/laptops", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/orders", "400")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestOrderMetrics(t *testing.T) {
	m := newTestMetrics()

	m.OrdersCreated.Inc()
	m.CheckoutFailures.WithLabelValues("insufficient_stock").Inc()
	m.ObserveTransition("pending", "cancelled")
	m.StockRestoredUnits.Add(3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CheckoutFailures.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderTransitions.WithLabelValues("pending", "cancelled")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StockRestoredUnits))
}

func TestSetBreakerState(t *testing.T) {
	m := newTestMetrics()
	m.SetBreakerState("laptop-cache", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("laptop-cache")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := newTestMetrics()
	m.OrdersCreated.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "techhaven_orders_created_total 1"))
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg, reg)
	assert.Panics(t, func() { New(reg, reg) }, "同一Registry重复注册应panic")
}

func TestSagaFinished(t *testing.T) {
	m := newTestMetrics()
	m.SagaFinished("create-laptop", nil, 0)
	m.SagaFinished("create-laptop", assert.AnError, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SagaExecutions.WithLabelValues("create-laptop", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SagaExecutions.WithLabelValues("create-laptop", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SagaCompensations))
}
