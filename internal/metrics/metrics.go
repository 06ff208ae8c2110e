// Package metrics содержит Prometheus-коллекторы comments-api.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "comments_api"

// Metrics - набор коллекторов на собственном реестре.
// Методы безопасны для nil-получателя: без метрик вызовы ничего не делают.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	commentsCreated prometheus.Counter
	panics          *prometheus.CounterVec
	timeouts        *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		commentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Comments persisted successfully.",
		}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_total",
			Help:      "Panics recovered in HTTP handlers by route.",
		}, []string{"route"}),
		timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_timeouts_total",
			Help:      "Requests whose context expired by the server deadline, by route.",
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.commentsCreated,
		m.panics,
		m.timeouts,
	)

	return m
}

// Handler отдаёт метрики реестра в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest учитывает завершённый HTTP-запрос.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	route = routeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// PanicRecovered учитывает панику, перехваченную в обработчике маршрута.
func (m *Metrics) PanicRecovered(route string) {
	if m == nil {
		return
	}

	m.panics.WithLabelValues(routeLabel(route)).Inc()
}

// RequestTimedOut учитывает запрос, прерванный серверным дедлайном.
func (m *Metrics) RequestTimedOut(route string) {
	if m == nil {
		return
	}

	m.timeouts.WithLabelValues(routeLabel(route)).Inc()
}

// routeLabel - запросы без совпавшего маршрута сводятся в одну метку.
func routeLabel(route string) string {
	if route == "" {
		return "unmatched"
	}
	return route
}

// CommentCreated учитывает успешно сохранённый комментарий.
func (m *Metrics) CommentCreated() {
	if m == nil {
		return
	}

	m.commentsCreated.Inc()
}
