package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
)

func TestCreateComment_AssignsIDAndCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()

	got, err := s.CreateComment(ctx, models.Comment{
		ID:      "ignored",
		PostID:  "post-1",
		Author:  "Ala",
		Contact: "ala@example.org",
		Body:    "Hello",
	})
	require.NoError(t, err)

	require.NotEmpty(t, got.ID)
	require.NotEqual(t, "ignored", got.ID)
	require.Equal(t, "post-1", got.PostID)
	require.Equal(t, "Ala", got.Author)
	require.Equal(t, "ala@example.org", got.Contact)
	require.Equal(t, "Hello", got.Body)
	require.False(t, got.CreatedAt.IsZero())
	require.Equal(t, time.UTC, got.CreatedAt.Location())
}

func TestListByPost_EmptyBeforeCreate(t *testing.T) {
	s := New()

	list, err := s.ListByPost(context.Background(), "nope")
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestListByPost_ReadAfterWrite_And_Isolation(t *testing.T) {
	s := New()
	ctx := context.Background()

	a1, err := s.CreateComment(ctx, models.Comment{PostID: "a", Body: "1"})
	require.NoError(t, err)
	a2, err := s.CreateComment(ctx, models.Comment{PostID: "a", Body: "2"})
	require.NoError(t, err)
	_, err = s.CreateComment(ctx, models.Comment{PostID: "b", Body: "3"})
	require.NoError(t, err)

	list, err := s.ListByPost(ctx, "a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, a1.ID, list[0].ID)
	require.Equal(t, a2.ID, list[1].ID)

	// копия: изменения результата не влияют на хранилище.
	list[0].Body = "mutated"
	again, err := s.ListByPost(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "1", again[0].Body)
}

// Часы «пошли назад» - CreatedAt всё равно не убывает в пределах поста.
func TestCreateComment_CreatedAtMonotonicPerPost(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
	i := 0

	s := New(WithClock(func() time.Time {
		now := ticks[i]
		i++
		return now
	}))
	ctx := context.Background()

	c1, err := s.CreateComment(ctx, models.Comment{PostID: "p", Body: "1"})
	require.NoError(t, err)
	c2, err := s.CreateComment(ctx, models.Comment{PostID: "p", Body: "2"})
	require.NoError(t, err)
	c3, err := s.CreateComment(ctx, models.Comment{PostID: "p", Body: "3"})
	require.NoError(t, err)

	require.Equal(t, base, c1.CreatedAt)
	require.Equal(t, base, c2.CreatedAt)
	require.Equal(t, base.Add(time.Second), c3.CreatedAt)
}

func TestCreateComment_DuplicateID_Conflict(t *testing.T) {
	s := New(WithIDGenerator(func() string { return "same" }))
	ctx := context.Background()

	_, err := s.CreateComment(ctx, models.Comment{PostID: "p", Body: "1"})
	require.NoError(t, err)

	_, err = s.CreateComment(ctx, models.Comment{PostID: "p", Body: "2"})
	require.ErrorIs(t, err, storage.ErrConflict)

	list, err := s.ListByPost(ctx, "p")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCountByPosts(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.CreateComment(ctx, models.Comment{PostID: "a", Body: fmt.Sprint(i)})
		require.NoError(t, err)
	}
	_, err := s.CreateComment(ctx, models.Comment{PostID: "b", Body: "x"})
	require.NoError(t, err)

	counts, err := s.CountByPosts(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"a": 3, "b": 1}, counts)
}

func TestClosed_ReturnsUnavailable(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close(ctx))

	_, err := s.CreateComment(ctx, models.Comment{PostID: "p", Body: "x"})
	require.ErrorIs(t, err, storage.ErrUnavailable)

	_, err = s.ListByPost(ctx, "p")
	require.ErrorIs(t, err, storage.ErrUnavailable)

	_, err = s.CountByPosts(ctx, []string{"p"})
	require.ErrorIs(t, err, storage.ErrUnavailable)

	require.ErrorIs(t, s.Ping(ctx), storage.ErrUnavailable)
}

func TestCreateComment_ConcurrentUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.CreateComment(ctx, models.Comment{PostID: "p", Body: "x"})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := s.ListByPost(ctx, "p")
	require.NoError(t, err)
	require.Len(t, list, n)

	seen := make(map[string]struct{}, n)
	for _, c := range list {
		seen[c.ID] = struct{}{}
	}
	require.Len(t, seen, n)
}
