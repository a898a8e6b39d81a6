// Package metrics Prometheus指标定义
// 指标注册到传入的Registerer，测试可使用独立的Registry
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "techhaven"

// Metrics 服务全部业务与HTTP指标
type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	OrdersCreated      prometheus.Counter
	CheckoutFailures   *prometheus.CounterVec
	CheckoutDuration   prometheus.Histogram
	OrderTransitions   *prometheus.CounterVec
	StockRestoredUnits prometheus.Counter

	CacheRequests *prometheus.CounterVec

	CircuitBreakerState *prometheus.GaugeVec

	SagaExecutions    *prometheus.CounterVec
	SagaCompensations prometheus.Counter

	EventsPublished *prometheus.CounterVec
	WSConnections   prometheus.Gauge
}

// New 创建并注册指标
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: gatherer,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path"}),

		HTTPRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "正在处理的HTTP请求数",
		}),

		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "下单成功总数",
		}),

		CheckoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_failures_total",
			Help:      "下单失败总数（按原因）",
		}, []string{"reason"}),

		CheckoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_seconds",
			Help:      "下单事务耗时（秒）",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_transitions_total",
			Help:      "订单状态流转次数",
		}, []string{"from", "to"}),

		StockRestoredUnits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_restored_units_total",
			Help:      "取消/删除订单回补的库存件数",
		}),

		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "商品缓存访问次数",
		}, []string{"result"}), // hit | miss | error

		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态（0=closed, 1=open, 2=half_open）",
		}, []string{"name"}),

		SagaExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_executions_total",
			Help:      "Saga执行次数",
		}, []string{"saga", "result"}),

		SagaCompensations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_compensations_total",
			Help:      "Saga补偿步骤执行次数",
		}),

		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_events_published_total",
			Help:      "订单事件发布次数",
		}, []string{"type", "result"}),

		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "当前WebSocket连接数",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.OrdersCreated,
		m.CheckoutFailures,
		m.CheckoutDuration,
		m.OrderTransitions,
		m.StockRestoredUnits,
		m.CacheRequests,
		m.CircuitBreakerState,
		m.SagaExecutions,
		m.SagaCompensations,
		m.EventsPublished,
		m.WSConnections,
	)
	return m
}

// NewDefault 使用独立Registry并附带Go运行时与进程指标
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg, reg)
}

// Handler /metrics 端点
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveHTTP 记录一次HTTP请求
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveTransition 记录订单状态流转
func (m *Metrics) ObserveTransition(from, to string) {
	m.OrderTransitions.WithLabelValues(from, to).Inc()
}

// SetBreakerState 熔断器状态变化回调使用
func (m *Metrics) SetBreakerState(name string, state int) {
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// SagaFinished 实现 saga.Observer
func (m *Metrics) SagaFinished(name string, err error, compensated int) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.SagaExecutions.WithLabelValues(name, result).Inc()
	m.SagaCompensations.Add(float64(compensated))
}
