package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/blog-comments/internal/metrics"
	logctx "github.com/pribylovaa/blog-comments/pkg/log"
)

// ErrRequestTimeout - причина отмены контекста запроса по дедлайну Timeout.
var ErrRequestTimeout = errors.New("request timeout")

// Timeout ограничивает обработку запроса длительностью d, если у запроса ещё нет дедлайна.
// По истечении context.Cause(ctx) == ErrRequestTimeout, а запрос учитывается в m. d <= 0 отключает мидлвар.
func Timeout(d time.Duration, m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Deadline(); ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeoutCause(r.Context(), d, ErrRequestTimeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(context.Cause(ctx), ErrRequestTimeout) {
				route := routePattern(r)
				m.RequestTimedOut(route)
				logctx.From(ctx).Warn("request_timeout",
					slog.String("path", r.URL.Path),
					slog.String("route", route),
					slog.Duration("limit", d),
				)
			}
		})
	}
}
