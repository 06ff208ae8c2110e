// Package blog связывает внешний слой рендеринга постов с комментариями:
// к каждой карточке поста добавляется число комментариев.
//
// HTTP-слой использует только Counter.Counts (GET /comments/counts).
// Count и Summaries - API для встраивающего рендеринга страниц в том же процессе:
// он передаёт свои карточки Post и получает PostSummary без отдельного HTTP-запроса.
package blog

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/pribylovaa/blog-comments/pkg/log"
)

// Post - карточка поста из внешнего источника контента. Для комментариев важен только ID.
type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Author   string `json:"author,omitempty"`
	Category string `json:"category,omitempty"`
}

// PostSummary - карточка поста со счётчиком комментариев.
type PostSummary struct {
	Post
	CommentsCount int `json:"commentsCount"`
}

// CountReader - источник счётчиков (service.Service).
type CountReader interface {
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error)
}

// Options - параметры пакетной загрузки.
type Options struct {
	// Wait - окно склейки одиночных запросов в один вызов CountByPosts.
	Wait time.Duration
	// BatchSize - максимальный размер пачки; 0 - без ограничения.
	BatchSize int
}

// Counter отдаёт число комментариев поста. Ошибка хранилища не ломает выдачу:
// счётчик деградирует до 0, событие пишется в лог.
type Counter struct {
	loader *dataloader.Loader[string, int]
}

func NewCounter(src CountReader, opts Options) *Counter {
	batch := func(ctx context.Context, postIDs []string) []*dataloader.Result[int] {
		const op = "blog/Counter.batch"

		results := make([]*dataloader.Result[int], len(postIDs))

		counts, err := src.CountByPosts(ctx, postIDs)
		if err != nil {
			log.From(ctx).Warn("comment counts unavailable, using zero", "op", op, "posts", len(postIDs), "err", err)
			counts = nil
		}

		for i, id := range postIDs {
			results[i] = &dataloader.Result[int]{Data: counts[id]}
		}

		return results
	}

	loaderOpts := []dataloader.Option[string, int]{
		// Счётчики не кэшируются: каждый запрос видит актуальное состояние хранилища.
		dataloader.WithCache[string, int](&dataloader.NoCache[string, int]{}),
		dataloader.WithWait[string, int](opts.Wait),
	}
	if opts.BatchSize > 0 {
		loaderOpts = append(loaderOpts, dataloader.WithBatchCapacity[string, int](opts.BatchSize))
	}

	return &Counter{loader: dataloader.NewBatchedLoader(batch, loaderOpts...)}
}

// Count возвращает число комментариев поста (0 при недоступном хранилище).
func (c *Counter) Count(ctx context.Context, postID string) int {
	n, err := c.loader.Load(ctx, postID)()
	if err != nil {
		return 0
	}

	return n
}

// Counts возвращает счётчики для набора постов; каждый id присутствует в ответе.
func (c *Counter) Counts(ctx context.Context, postIDs []string) map[string]int {
	out := make(map[string]int, len(postIDs))
	if len(postIDs) == 0 {
		return out
	}

	values, _ := c.loader.LoadMany(ctx, postIDs)()
	for i, id := range postIDs {
		if i < len(values) {
			out[id] = values[i]
		} else {
			out[id] = 0
		}
	}

	return out
}

// Summaries дополняет карточки постов счётчиками комментариев, сохраняя порядок.
func (c *Counter) Summaries(ctx context.Context, posts []Post) []PostSummary {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	counts := c.Counts(ctx, ids)

	out := make([]PostSummary, len(posts))
	for i, p := range posts {
		out[i] = PostSummary{Post: p, CommentsCount: counts[p.ID]}
	}

	return out
}
