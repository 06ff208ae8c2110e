// Package storage описывает контракт хранилища комментариев.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/blog-comments/internal/models"
)

var (
	// ErrUnavailable - не удалось получить живое соединение с хранилищем.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrConflict - конфликт уникальности идентификатора.
	ErrConflict = errors.New("conflict")
)

// Storage описывает операции над комментариями.
//
// Каждый вызов сам получает соединение (сессию) и освобождает его на любом пути выхода;
// соединение между вызовами не удерживается.
type Storage interface {
	// CreateComment сохраняет комментарий.
	// Входной Comment должен содержать PostID и Body; Author/Contact - как есть.
	// ID и CreatedAt вычисляет хранилище, переданные значения игнорируются.
	// Возможные ошибки: ErrUnavailable, ErrConflict.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// ListByPost возвращает все комментарии поста.
	// Сортировка: created_at ASC; порядок стабилен для неизменного состояния хранилища.
	// Нет комментариев - пустой срез без ошибки.
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)

	// CountByPosts возвращает количество комментариев по каждому посту.
	// Посты без комментариев в результат могут не попасть.
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error)

	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
