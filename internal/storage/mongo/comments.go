package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
)

// commentDoc - представление комментария в коллекции.
type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	PostID    string             `bson:"post_id"`
	Author    string             `bson:"author"`
	Contact   string             `bson:"contact,omitempty"`
	Body      string             `bson:"body"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d commentDoc) toModel() models.Comment {
	return models.Comment{
		ID:        d.ID.Hex(),
		PostID:    d.PostID,
		Author:    d.Author,
		Contact:   d.Contact,
		Body:      d.Body,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// CreateComment вставляет комментарий; _id генерирует драйвер.
// created_at = max(now, последний created_at поста) - не убывает в пределах поста.
func (m *Mongo) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	// MongoDB DateTime хранит миллисекунды.
	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		PostID:    comm.PostID,
		Author:    comm.Author,
		Contact:   comm.Contact,
		Body:      comm.Body,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	err := m.withSession(ctx, func(sc mongodriver.SessionContext) error {
		last, err := m.lastCreatedAt(sc, doc.PostID)
		if err != nil {
			return err
		}
		if last.After(doc.CreatedAt) {
			doc.CreatedAt = last
		}

		_, err = m.comments.InsertOne(sc, doc)
		return err
	})
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	out := doc.toModel()
	return &out, nil
}

// lastCreatedAt возвращает created_at самого позднего комментария поста
// или нулевое время, если комментариев ещё нет.
func (m *Mongo) lastCreatedAt(sc mongodriver.SessionContext, postID string) (time.Time, error) {
	findOpts := options.FindOne().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.D{{Key: "created_at", Value: 1}})

	var doc commentDoc
	err := m.comments.FindOne(sc, bson.D{{Key: "post_id", Value: postID}}, findOpts).Decode(&doc)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("find last: %w", err)
	}

	return doc.CreatedAt.UTC(), nil
}

// ListByPost возвращает комментарии поста. Сортировка: created_at ASC, _id ASC.
func (m *Mongo) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "storage/mongo/ListByPost"

	items := make([]models.Comment, 0)

	err := m.withSession(ctx, func(sc mongodriver.SessionContext) error {
		findOpts := options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

		cur, err := m.comments.Find(sc, bson.D{{Key: "post_id", Value: postID}}, findOpts)
		if err != nil {
			return fmt.Errorf("find: %w", err)
		}
		defer cur.Close(sc)

		for cur.Next(sc) {
			var doc commentDoc
			if err := cur.Decode(&doc); err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			items = append(items, doc.toModel())
		}

		if err := cur.Err(); err != nil {
			return fmt.Errorf("cursor: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// CountByPosts считает комментарии по набору постов одной агрегацией.
func (m *Mongo) CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	const op = "storage/mongo/CountByPosts"

	out := make(map[string]int, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	err := m.withSession(ctx, func(sc mongodriver.SessionContext) error {
		pipeline := mongodriver.Pipeline{
			{{Key: "$match", Value: bson.D{{Key: "post_id", Value: bson.D{{Key: "$in", Value: postIDs}}}}}},
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$post_id"},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
		}

		cur, err := m.comments.Aggregate(sc, pipeline)
		if err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}

		var rows []struct {
			PostID string `bson:"_id"`
			Count  int    `bson:"count"`
		}
		if err := cur.All(sc, &rows); err != nil {
			return fmt.Errorf("decode: %w", err)
		}

		for _, row := range rows {
			out[row.PostID] = row.Count
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Storage = (*Mongo)(nil)
