// Package metrics содержит Prometheus-метрики сервиса курьера-партнёра.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmeshcher/delivery-partner/internal/model"
)

const namespace = "partner"

// unmatchedRoute подставляется в метку route для запросов без шаблона маршрута.
const unmatchedRoute = "unmatched"

// Metrics хранит коллекторы сервиса в собственном реестре.
type Metrics struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	commandErrors *prometheus.CounterVec
	orders        *orderStatsCollector
	online        prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New создаёт и регистрирует коллекторы.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "transitions_total",
				Help:      "Total number of applied order transitions.",
			},
			[]string{"transition"},
		),
		commandErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "command_errors_total",
				Help:      "Total number of refused order commands.",
			},
			[]string{"transition", "reason"},
		),
		orders: &orderStatsCollector{
			desc: prometheus.NewDesc(
				prometheus.BuildFQName(namespace, "", "orders"),
				"Current number of orders per status.",
				[]string{"status"}, nil,
			),
		},
		online: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "online",
				Help:      "1 if the partner is online, 0 otherwise.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.transitions,
		m.commandErrors,
		m.orders,
		m.online,
		m.httpRequests,
		m.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

// Registry возвращает реестр коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler возвращает HTTP-обработчик с метриками в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	// Сжатием ответа занимается GzipMiddleware роутера.
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{DisableCompression: true})
}

// ObserveTransition учитывает успешный переход заказа.
func (m *Metrics) ObserveTransition(transition string) {
	m.transitions.WithLabelValues(transition).Inc()
}

// ObserveCommandError учитывает отклонённую команду.
func (m *Metrics) ObserveCommandError(transition, reason string) {
	m.commandErrors.WithLabelValues(transition, reason).Inc()
}

// WatchOrderStats задаёт источник числа заказов по статусам.
// Источник читается при каждом сборе метрик.
func (m *Metrics) WatchOrderStats(stats func() map[model.OrderStatus]int) {
	m.orders.setSource(stats)
}

// SetOnline выставляет признак доступности партнёра.
func (m *Metrics) SetOnline(online bool) {
	if online {
		m.online.Set(1)
		return
	}
	m.online.Set(0)
}

// InstrumentHandler оборачивает обработчик сбором HTTP-метрик.
// Маршрут берётся из шаблона chi, чтобы идентификаторы заказов не раздували кардинальность.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type orderStatsCollector struct {
	desc *prometheus.Desc

	mu     sync.RWMutex
	source func() map[model.OrderStatus]int
}

func (c *orderStatsCollector) setSource(source func() map[model.OrderStatus]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
}

func (c *orderStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *orderStatsCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	source := c.source
	c.mu.RUnlock()

	if source == nil {
		return
	}
	for status, n := range source() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), string(status))
	}
}
