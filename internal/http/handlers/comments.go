package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/blog-comments/internal/http/errors"
	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/service"
)

// maxCountPosts - сколько постов можно запросить в одном /comments/counts.
const maxCountPosts = 100

// Verb - закрытый набор операций ресурса /comments.
type Verb int

const (
	VerbUnsupported Verb = iota
	VerbCreateComment
)

// VerbOf определяет операцию по HTTP-методу (без учёта регистра).
func VerbOf(method string) Verb {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return VerbCreateComment
	default:
		return VerbUnsupported
	}
}

// ErrUnsupportedMethod - метод не поддерживается ресурсом /comments.
var ErrUnsupportedMethod = apierrors.ErrMethodNotAllowed

// UnsupportedMethodError - обращение к /comments неподдерживаемым методом.
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return "unsupported method " + e.Method
}

// Message - текст для клиента.
func (e *UnsupportedMethodError) Message() string {
	return "Unsupported method " + e.Method
}

func (e *UnsupportedMethodError) Unwrap() error {
	return ErrUnsupportedMethod
}

// createCommentRequest - тело POST /comments.
type createCommentRequest struct {
	PostID  string `json:"postId"`
	Author  string `json:"author"`
	Contact string `json:"contact,omitempty"`
	Body    string `json:"body"`
}

type listCommentsResponse struct {
	Comments []models.Comment `json:"comments"`
}

type commentCountsResponse struct {
	Counts map[string]int `json:"counts"`
}

// Comments - диспетчер ресурса /comments: метод -> операция шлюза -> статус.
// Бизнес-логики здесь нет, только маппинг исходов.
func (h *Handlers) Comments(w http.ResponseWriter, r *http.Request) {
	switch VerbOf(r.Method) {
	case VerbCreateComment:
		h.createComment(w, r)
	default:
		w.Header().Set("Allow", http.MethodPost)
		apierrors.WriteError(w, r, &UnsupportedMethodError{Method: strings.ToUpper(r.Method)})
	}
}

func (h *Handlers) createComment(w http.ResponseWriter, r *http.Request) {
	var in createCommentRequest
	if err := decodeStrict(w, r, h.MaxBodyBytes, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	comm, err := h.Service.CreateComment(r.Context(), service.CreateCommentInput{
		PostID:  in.PostID,
		Author:  in.Author,
		Contact: in.Contact,
		Body:    in.Body,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, comm)
}

// ListByPost - GET /posts/{post_id}/comments.
func (h *Handlers) ListByPost(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListByPost(r.Context(), chi.URLParam(r, "post_id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listCommentsResponse{Comments: items})
}

// CommentCounts - GET /comments/counts?postId=a&postId=b.
// Недоступность хранилища не приводит к ошибке: счётчики деградируют до 0.
func (h *Handlers) CommentCounts(w http.ResponseWriter, r *http.Request) {
	ids := make([]string, 0)
	for _, id := range r.URL.Query()["postId"] {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	if len(ids) > maxCountPosts {
		apierrors.WriteError(w, r, &service.ValidationError{
			Field:   "postId",
			Message: fmt.Sprintf("at most %d postId values are allowed", maxCountPosts),
		})
		return
	}

	writeJSON(w, http.StatusOK, commentCountsResponse{Counts: h.Counter.Counts(r.Context(), ids)})
}

// MethodNotAllowed - JSON-ответ chi для известного пути с неверным методом.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteError(w, r, &UnsupportedMethodError{Method: strings.ToUpper(r.Method)})
}
