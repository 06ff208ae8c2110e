package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/blog-comments/internal/metrics"
)

// Metrics учитывает запросы по шаблону маршрута chi (а не по сырому пути).
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			m.ObserveRequest(r.Method, routePattern(r), sw.code(), time.Since(start))
		})
	}
}

// routePattern возвращает шаблон совпавшего маршрута chi; до маршрутизации - "".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
