package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/pkg/log"
	"github.com/pribylovaa/blog-comments/pkg/redact"
)

// CreateCommentInput - поля, присланные автором комментария.
type CreateCommentInput struct {
	PostID  string
	Author  string
	Contact string
	Body    string
}

// CreateComment - бизнес-операция создания комментария.
//
// Валидация (после TrimSpace всех полей):
//   - PostID и Body обязательны;
//   - Body, Author и Contact ограничены по длине в рунах (config.LimitsConfig).
//
// Поведение/ошибки:
//   - *ValidationError (errors.Is(err, ErrValidation)) - хранилище не вызывается;
//   - ErrStoreUnavailable - любая ошибка хранилища.
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	in.PostID = strings.TrimSpace(in.PostID)
	in.Author = strings.TrimSpace(in.Author)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Body = strings.TrimSpace(in.Body)

	ctx, lg := log.With(ctx, "op", op, "post_id", in.PostID, "contact", redact.Contact(in.Contact))

	if verr := s.validateCreate(in); verr != nil {
		lg.Warn("invalid argument", "field", verr.Field)
		return nil, fmt.Errorf("%s: %w", op, verr)
	}

	result, err := s.storage.CreateComment(ctx, models.Comment{
		PostID:  in.PostID,
		Author:  in.Author,
		Contact: in.Contact,
		Body:    in.Body,
	})
	if err != nil {
		lg.Error("storage error on CreateComment", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}

	s.metrics.CommentCreated()
	lg.Info("comment created", "id", result.ID)

	return result, nil
}

func (s *Service) validateCreate(in CreateCommentInput) *ValidationError {
	switch {
	case in.PostID == "":
		return &ValidationError{Field: "postId", Message: "postId is required"}
	case in.Body == "":
		return &ValidationError{Field: "body", Message: "body is required"}
	}

	if err := maxLen("body", in.Body, s.limits.MaxBodyLen); err != nil {
		return err
	}
	if err := maxLen("author", in.Author, s.limits.MaxAuthorLen); err != nil {
		return err
	}

	return maxLen("contact", in.Contact, s.limits.MaxContactLen)
}

// maxLen: limit <= 0 означает отсутствие ограничения.
func maxLen(field, value string, limit int) *ValidationError {
	if limit <= 0 || utf8.RuneCountInString(value) <= limit {
		return nil
	}

	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be at most %d characters", field, limit),
	}
}

// ListByPost - комментарии поста в порядке создания.
//
// Поведение/ошибки:
//   - пустой postID -> *ValidationError;
//   - нет комментариев -> пустой (не nil) срез;
//   - ErrStoreUnavailable - любая ошибка хранилища.
func (s *Service) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "service/comments/ListByPost"

	postID = strings.TrimSpace(postID)
	ctx, lg := log.With(ctx, "op", op, "post_id", postID)

	if postID == "" {
		lg.Warn("invalid argument: empty post_id")
		return nil, fmt.Errorf("%s: %w", op, &ValidationError{Field: "postId", Message: "postId is required"})
	}

	items, err := s.storage.ListByPost(ctx, postID)
	if err != nil {
		lg.Error("storage error on ListByPost", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}

	if items == nil {
		items = []models.Comment{}
	}

	return items, nil
}

// CountByPosts - число комментариев по каждому запрошенному посту.
// Пустые идентификаторы игнорируются, остальные присутствуют в ответе (0, если комментариев нет).
func (s *Service) CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	const op = "service/comments/CountByPosts"

	ids := make([]string, 0, len(postIDs))
	seen := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	out := make(map[string]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	counts, err := s.storage.CountByPosts(ctx, ids)
	if err != nil {
		log.From(ctx).Error("storage error on CountByPosts", "op", op, "posts", len(ids), "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}

	for _, id := range ids {
		out[id] = counts[id]
	}

	return out, nil
}
