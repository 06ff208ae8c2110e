package service

// Тесты сервисного слоя (internal/service/comments.go).
//
//  Проверяем:
//  - валидацию входов CreateComment/ListByPost (ErrValidation, хранилище не вызывается);
//  - нормализацию (TrimSpace) и аргументы вызова storage;
//  - маппинг любой ошибки storage -> ErrStoreUnavailable;
//  - счётчики CountByPosts (нули для отсутствующих, пропуск пустых id);
//  - сквозные сценарии на in-memory хранилище.
//
// Моки: mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/blog-comments/internal/config"
	"github.com/pribylovaa/blog-comments/internal/metrics"
	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/internal/storage/memory"
	"github.com/pribylovaa/blog-comments/mocks"
)

func testLimits() config.LimitsConfig {
	return config.LimitsConfig{
		MaxBodyLen:    20,
		MaxAuthorLen:  5,
		MaxContactLen: 10,
	}
}

// newServiceWithMocks - поднимает сервис с моками стораджа.
func newServiceWithMocks(t *testing.T) (*Service, *mocks.MockStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	ms := mocks.NewMockStorage(ctrl)
	return New(ms, testLimits(), nil), ms
}

func TestCreateComment_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		in    CreateCommentInput
		field string
	}{
		{"empty post id", CreateCommentInput{PostID: "  ", Body: "hi"}, "postId"},
		{"empty body", CreateCommentInput{PostID: "p1", Body: " \n\t "}, "body"},
		{"body too long", CreateCommentInput{PostID: "p1", Body: strings.Repeat("я", 21)}, "body"},
		{"author too long", CreateCommentInput{PostID: "p1", Body: "hi", Author: "abcdef"}, "author"},
		{"contact too long", CreateCommentInput{PostID: "p1", Body: "hi", Contact: "12345678901"}, "contact"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// Мок без ожиданий: любой вызов хранилища провалит тест.
			s, _ := newServiceWithMocks(t)

			got, err := s.CreateComment(context.Background(), tc.in)
			require.Nil(t, got)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tc.field, verr.Field)
			require.Contains(t, verr.Message, tc.field)
		})
	}
}

func TestCreateComment_LimitsCountRunes(t *testing.T) {
	t.Parallel()
	s, ms := newServiceWithMocks(t)

	ms.EXPECT().CreateComment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c models.Comment) (*models.Comment, error) {
			c.ID = "id-1"
			return &c, nil
		})

	// 20 рун, но 40 байт.
	_, err := s.CreateComment(context.Background(), CreateCommentInput{PostID: "p1", Body: strings.Repeat("я", 20)})
	require.NoError(t, err)
}

func TestCreateComment_TrimsAndPassesFields(t *testing.T) {
	t.Parallel()
	s, ms := newServiceWithMocks(t)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ms.EXPECT().CreateComment(gomock.Any(), models.Comment{
		PostID:  "post-1",
		Author:  "Ala",
		Contact: "ala@x.io",
		Body:    "Hello",
	}).DoAndReturn(func(_ context.Context, c models.Comment) (*models.Comment, error) {
		c.ID = "id-1"
		c.CreatedAt = created
		return &c, nil
	})

	got, err := s.CreateComment(context.Background(), CreateCommentInput{
		PostID:  " post-1 ",
		Author:  " Ala ",
		Contact: " ala@x.io",
		Body:    "\tHello\n",
	})
	require.NoError(t, err)
	require.Equal(t, "id-1", got.ID)
	require.Equal(t, "Hello", got.Body)
	require.Equal(t, created, got.CreatedAt)
}

func TestCreateComment_StorageErrorMapsToUnavailable(t *testing.T) {
	t.Parallel()

	for _, storeErr := range []error{storage.ErrUnavailable, storage.ErrConflict, errors.New("boom")} {
		s, ms := newServiceWithMocks(t)
		ms.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(nil, storeErr)

		got, err := s.CreateComment(context.Background(), CreateCommentInput{PostID: "p", Body: "b"})
		require.Nil(t, got)
		require.ErrorIs(t, err, ErrStoreUnavailable)
		require.False(t, errors.Is(err, ErrValidation))
	}
}

func TestCreateComment_CountsMetric(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	s := New(memory.New(), testLimits(), m)

	_, err := s.CreateComment(context.Background(), CreateCommentInput{PostID: "p", Body: "b"})
	require.NoError(t, err)
	_, err = s.CreateComment(context.Background(), CreateCommentInput{PostID: "", Body: "b"})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), "comments_api_comments_created_total 1")
}

func TestListByPost(t *testing.T) {
	t.Parallel()

	t.Run("blank post id", func(t *testing.T) {
		s, _ := newServiceWithMocks(t)
		_, err := s.ListByPost(context.Background(), "   ")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("nil from storage becomes empty slice", func(t *testing.T) {
		s, ms := newServiceWithMocks(t)
		ms.EXPECT().ListByPost(gomock.Any(), "p1").Return(nil, nil)

		got, err := s.ListByPost(context.Background(), " p1 ")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	})

	t.Run("storage error", func(t *testing.T) {
		s, ms := newServiceWithMocks(t)
		ms.EXPECT().ListByPost(gomock.Any(), "p1").Return(nil, storage.ErrUnavailable)

		_, err := s.ListByPost(context.Background(), "p1")
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestCountByPosts(t *testing.T) {
	t.Parallel()

	t.Run("fills zeros and skips blanks", func(t *testing.T) {
		s, ms := newServiceWithMocks(t)
		ms.EXPECT().CountByPosts(gomock.Any(), []string{"a", "b", "c"}).
			Return(map[string]int{"a": 2}, nil)

		got, err := s.CountByPosts(context.Background(), []string{"a", " ", "b", "a", " c"})
		require.NoError(t, err)
		require.Equal(t, map[string]int{"a": 2, "b": 0, "c": 0}, got)
	})

	t.Run("no ids no storage call", func(t *testing.T) {
		s, _ := newServiceWithMocks(t)
		got, err := s.CountByPosts(context.Background(), []string{"", "  "})
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("storage error", func(t *testing.T) {
		s, ms := newServiceWithMocks(t)
		ms.EXPECT().CountByPosts(gomock.Any(), gomock.Any()).Return(nil, errors.New("down"))

		_, err := s.CountByPosts(context.Background(), []string{"a"})
		require.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

// Сквозные свойства на in-memory хранилище.
func TestService_MemoryRoundTrip(t *testing.T) {
	t.Parallel()

	s := New(memory.New(), testLimits(), nil)
	ctx := context.Background()

	empty, err := s.ListByPost(ctx, "post-1")
	require.NoError(t, err)
	require.Empty(t, empty)

	a, err := s.CreateComment(ctx, CreateCommentInput{PostID: "post-1", Author: "A", Body: "one"})
	require.NoError(t, err)
	b, err := s.CreateComment(ctx, CreateCommentInput{PostID: "post-1", Author: "B", Body: "two"})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	_, err = s.CreateComment(ctx, CreateCommentInput{PostID: "post-1", Body: ""})
	require.ErrorIs(t, err, ErrValidation)

	got, err := s.ListByPost(ctx, "post-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, a.ID, got[0].ID)
	require.Equal(t, b.ID, got[1].ID)

	counts, err := s.CountByPosts(ctx, []string{"post-1", "post-2"})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"post-1": 2, "post-2": 0}, counts)
}
