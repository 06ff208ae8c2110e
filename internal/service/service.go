// service содержит бизнес-логику комментариев: шлюз между HTTP-слоем и хранилищем.
package service

import (
	"errors"

	"github.com/pribylovaa/blog-comments/internal/config"
	"github.com/pribylovaa/blog-comments/internal/metrics"
	"github.com/pribylovaa/blog-comments/internal/storage"
)

var (
	// ErrValidation - входные данные не прошли проверку (ошибка клиента).
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable - хранилище недоступно или отказало при записи/чтении.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError описывает конкретное нарушение; Message пригоден для показа пользователю.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Service - описывает бизнес-логику комментариев.
type Service struct {
	storage storage.Storage
	limits  config.LimitsConfig
	metrics *metrics.Metrics
}

// New создает новый экземпляр Service с ограничениями полей limits. m может быть nil.
func New(storage storage.Storage, limits config.LimitsConfig, m *metrics.Metrics) *Service {
	return &Service{
		storage: storage,
		limits:  limits,
		metrics: m,
	}
}
