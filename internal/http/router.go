package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/blog-comments/internal/http/handlers"
	"github.com/pribylovaa/blog-comments/internal/http/middleware"
	"github.com/pribylovaa/blog-comments/internal/metrics"
)

// Options - параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой - роуты регистрируются на корне.
	// RateLimit ограничивает запись комментариев; nil - без лимита.
	RateLimit *middleware.RateLimiter
	Metrics   *metrics.Metrics
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(opts.Metrics), // безопасно ловим паники
		middleware.RequestID(),           // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),  // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout, opts.Metrics)) // общий дедлайн запроса
	}
	root.MethodNotAllowed(handlers.MethodNotAllowed)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		sub.MethodNotAllowed(handlers.MethodNotAllowed)
		registerRoutes(sub, h, opts)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts)
	return root
}

// registerRoutes - единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, opts Options) {
	// Ресурс /comments принимает любой метод: решение принимает диспетчер.
	comments := http.Handler(http.HandlerFunc(h.Comments))
	if opts.RateLimit != nil {
		comments = opts.RateLimit.Middleware()(comments)
	}
	r.Handle("/comments", comments)

	r.Get("/comments/counts", h.CommentCounts)
	r.Get("/posts/{post_id}/comments", h.ListByPost)
}
