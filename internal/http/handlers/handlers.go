package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/pribylovaa/blog-comments/internal/http/errors"
	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/service"
)

// defaultMaxBodyBytes - предел тела запроса на создание комментария.
const defaultMaxBodyBytes = 64 << 10

// CommentService - операции шлюза комментариев (service.Service).
type CommentService interface {
	CreateComment(ctx context.Context, in service.CreateCommentInput) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
}

// CommentCounter - счётчики комментариев по постам (blog.Counter).
type CommentCounter interface {
	Counts(ctx context.Context, postIDs []string) map[string]int
}

// Handlers агрегирует зависимости HTTP-обработчиков.
type Handlers struct {
	Service      CommentService
	Counter      CommentCounter
	MaxBodyBytes int64
}

func New(svc CommentService, counter CommentCounter) *Handlers {
	return &Handlers{
		Service:      svc,
		Counter:      counter,
		MaxBodyBytes: defaultMaxBodyBytes,
	}
}

// writeJSON - единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict - строгий JSON-декодер: запрещаем неизвестные поля и хвост после объекта.
// Ошибки разбора оборачиваются в apierrors.ErrMalformedBody, превышение лимита
// остаётся *http.MaxBytesError.
func decodeStrict(w http.ResponseWriter, r *http.Request, limit int64, value any) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return maxErr
		}
		return fmt.Errorf("%w: %v", apierrors.ErrMalformedBody, err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON object", apierrors.ErrMalformedBody)
	}

	return nil
}
