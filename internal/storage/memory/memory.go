// Package memory - хранилище комментариев в памяти процесса (локальный запуск, тесты).
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
)

// Storage хранит комментарии в map по post_id.
type Storage struct {
	mu       sync.RWMutex
	comments map[string][]models.Comment
	ids      map[string]struct{}
	closed   bool

	now   func() time.Time
	newID func() string
}

// Option настраивает Storage (часы и генератор id подменяются в тестах).
type Option func(*Storage)

// WithClock задаёт источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

// WithIDGenerator задаёт генератор идентификаторов.
func WithIDGenerator(gen func() string) Option {
	return func(s *Storage) { s.newID = gen }
}

func New(opts ...Option) *Storage {
	s := &Storage{
		comments: make(map[string][]models.Comment),
		ids:      make(map[string]struct{}),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateComment сохраняет комментарий. CreatedAt не убывает в пределах поста.
func (s *Storage) CreateComment(_ context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/memory/CreateComment"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
	}

	comm.ID = s.newID()
	if _, exists := s.ids[comm.ID]; exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
	}

	comm.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	if list := s.comments[comm.PostID]; len(list) > 0 {
		if last := list[len(list)-1].CreatedAt; comm.CreatedAt.Before(last) {
			comm.CreatedAt = last
		}
	}

	s.comments[comm.PostID] = append(s.comments[comm.PostID], comm)
	s.ids[comm.ID] = struct{}{}

	return &comm, nil
}

// ListByPost возвращает копию комментариев поста в порядке вставки (он же created_at ASC).
func (s *Storage) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	const op = "storage/memory/ListByPost"

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
	}

	out := make([]models.Comment, len(s.comments[postID]))
	copy(out, s.comments[postID])

	return out, nil
}

func (s *Storage) CountByPosts(_ context.Context, postIDs []string) (map[string]int, error) {
	const op = "storage/memory/CountByPosts"

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
	}

	out := make(map[string]int, len(postIDs))
	for _, id := range postIDs {
		if n := len(s.comments[id]); n > 0 {
			out[id] = n
		}
	}

	return out, nil
}

func (s *Storage) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.ErrUnavailable
	}
	return nil
}

// Close помечает хранилище закрытым: дальнейшие вызовы получают storage.ErrUnavailable.
func (s *Storage) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Storage = (*Storage)(nil)
