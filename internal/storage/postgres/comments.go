package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
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

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

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

// CreateComment вставляет комментарий.
// created_at = max(now, последний created_at поста) - не убывает в пределах поста.
// Вставки одного поста сериализуются транзакционной advisory-блокировкой,
// поэтому порядок фиксации совпадает с порядком created_at.
func (s *Storage) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/postgres/CreateComment"

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	comm.ID = uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	query, args, err := psql.Insert(tableComments).
		Columns(commentColumns()...).
		Values(
			comm.ID,
			comm.PostID,
			comm.Author,
			comm.Contact,
			comm.Body,
			sq.Expr("GREATEST(?::timestamptz, COALESCE((SELECT MAX(created_at) FROM comments WHERE post_id = ?), ?::timestamptz))", now, comm.PostID, now),
		).
		Suffix("RETURNING " + commentFieldCreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", comm.PostID); err != nil {
		return nil, fmt.Errorf("%s: lock post: %w", op, err)
	}

	if err := tx.QueryRow(ctx, query, args...).Scan(&comm.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	comm.CreatedAt = comm.CreatedAt.UTC()
	return &comm, nil
}

// ListByPost возвращает комментарии поста. Сортировка: created_at ASC, id ASC.
func (s *Storage) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "storage/postgres/ListByPost"

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	query, args, err := psql.Select(commentColumns()...).
		From(tableComments).
		Where(sq.Eq{commentFieldPostID: postID}).
		OrderBy(commentFieldCreatedAt+" ASC", commentFieldID+" ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.Comment, 0)
	for rows.Next() {
		var comm models.Comment
		if err := rows.Scan(
			&comm.ID,
			&comm.PostID,
			&comm.Author,
			&comm.Contact,
			&comm.Body,
			&comm.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}

		comm.CreatedAt = comm.CreatedAt.UTC()
		items = append(items, comm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return items, nil
}

// CountByPosts считает комментарии по набору постов одним GROUP BY.
func (s *Storage) CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	const op = "storage/postgres/CountByPosts"

	out := make(map[string]int, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer conn.Release()

	query, args, err := psql.Select(commentFieldPostID, "COUNT(*)").
		From(tableComments).
		Where(sq.Eq{commentFieldPostID: postIDs}).
		GroupBy(commentFieldPostID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: build: %w", op, err)
	}

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
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
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return out, nil
}
