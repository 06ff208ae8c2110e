package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/pkg/log"
)

const tableComments = "comments"

const (
	commentFieldID        = "id"
	commentFieldPostID    = "post_id"
	commentFieldAuthor    = "author"
	commentFieldContact   = "contact"
	commentFieldBody      = "body"
	commentFieldCreatedAt = "created_at"
)

func commentColumns() []string {
	return []string{
		commentFieldID,
		commentFieldPostID,
		commentFieldAuthor,
		commentFieldContact,
		commentFieldBody,
		commentFieldCreatedAt,
	}
}

// created_at хранится как unix-миллисекунды: сортировка и MAX работают без разбора строк.
func scanComment(row sq.RowScanner) (models.Comment, error) {
	var (
		comm   models.Comment
		millis int64
	)

	err := row.Scan(
		&comm.ID,
		&comm.PostID,
		&comm.Author,
		&comm.Contact,
		&comm.Body,
		&millis,
	)
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to scan row: %w", err)
	}

	comm.CreatedAt = time.UnixMilli(millis).UTC()
	return comm, nil
}

// CreateComment вставляет комментарий; created_at не убывает в пределах поста.
func (s *Storage) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/sqlite/CreateComment"

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn, err := s.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Close()

	lastQuery, lastArgs, err := sq.Select("MAX(" + commentFieldCreatedAt + ")").
		From(tableComments).
		Where(sq.Eq{commentFieldPostID: comm.PostID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	var last sql.NullInt64
	if err := conn.QueryRowContext(ctx, lastQuery, lastArgs...).Scan(&last); err != nil {
		return nil, fmt.Errorf("%s: last created_at: %w", op, err)
	}

	now := time.Now().UTC().UnixMilli()
	if last.Valid && last.Int64 > now {
		now = last.Int64
	}

	comm.ID = uuid.NewString()
	comm.CreatedAt = time.UnixMilli(now).UTC()

	query, args, err := sq.Insert(tableComments).
		Columns(commentColumns()...).
		Values(
			comm.ID,
			comm.PostID,
			comm.Author,
			comm.Contact,
			comm.Body,
			now,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	if _, err := conn.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return nil, fmt.Errorf("%s: failed to exec insert: %w", op, err)
	}

	return &comm, nil
}

// ListByPost возвращает комментарии поста. Сортировка: created_at ASC, id ASC.
func (s *Storage) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "storage/sqlite/ListByPost"

	conn, err := s.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Close()

	query, args, err := sq.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldPostID: postID}).
		OrderBy(commentFieldCreatedAt+" ASC", commentFieldID+" ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query failed: %w", op, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.From(ctx).Error("failed to close rows", "op", op, "err", err)
		}
	}()

	items := make([]models.Comment, 0)
	for rows.Next() {
		comm, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		items = append(items, comm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration failed: %w", op, err)
	}

	return items, nil
}

func (s *Storage) CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	const op = "storage/sqlite/CountByPosts"

	out := make(map[string]int, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	conn, err := s.conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Close()

	query, args, err := sq.Select(commentFieldPostID, "COUNT(*)").
		From(tableComments).
		Where(sq.Eq{commentFieldPostID: postIDs}).
		GroupBy(commentFieldPostID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query failed: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			postID string
			count  int
		)
		if err := rows.Scan(&postID, &count); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		out[postID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration failed: %w", op, err)
	}

	return out, nil
}

// isUniqueViolation распознаёт SQLITE_CONSTRAINT_PRIMARYKEY/UNIQUE по тексту ошибки драйвера.
func isUniqueViolation(err error) bool {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}
