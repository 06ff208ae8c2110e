// Package models содержит доменные сущности сервиса комментариев.
package models

import "time"

// Comment - комментарий к посту блога.
// Важно:
//   - ID присваивает хранилище при вставке (Mongo ObjectID hex или UUID) и больше не меняет;
//   - PostID - идентификатор поста во внешнем контент-источнике, не внешний ключ;
//   - Author/Contact - как их прислал автор; Contact необязателен;
//   - CreatedAt проставляет хранилище (UTC, миллисекунды), не убывает в пределах поста.
//
// Комментарии только добавляются: обновления и удаления нет.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Author    string    `json:"author"`
	Contact   string    `json:"contact,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
