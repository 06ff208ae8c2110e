// errors стандартизирует ответы об ошибках HTTP-слоя comments-api.
// На вход он принимает ошибку сервисного слоя или транспорта,
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей хранилища.
//
// Поле message всегда находится на верхнем уровне тела ответа.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/blog-comments/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrMalformedBody - тело запроса не является корректным JSON ожидаемой формы.
	ErrMalformedBody = errors.New("malformed request body")
	// ErrMethodNotAllowed - метод не поддерживается ресурсом.
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrRateLimited - клиент превысил лимит запросов.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ErrorResponse - единый формат ошибки для фронта.
// Code - короткий стабильный код для машиночитаемой обработки.
// Message - безопасное человекочитаемое описание.
// RequestID - прокидывается из X-Request-Id, если есть (для трассировки).
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// messager - ошибка, несущая сообщение, безопасное для показа клиенту.
type messager interface {
	Message() string
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal;
//   - service.ErrValidation -> 400 с текстом нарушения;
//   - ErrMalformedBody -> 400, *http.MaxBytesError -> 413;
//   - ErrMethodNotAllowed -> 405, ErrRateLimited -> 429;
//   - context.Canceled -> 499, context.DeadlineExceeded -> 504;
//   - service.ErrStoreUnavailable и прочее -> 500/internal без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	var (
		verr    *service.ValidationError
		maxErr  *http.MaxBytesError
		withMsg messager
	)

	switch {
	case err == nil:
		return internal()
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Code: "invalid_argument", Message: verr.Message}
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Code: "invalid_argument", Message: "invalid argument"}
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, ErrorResponse{Code: "payload_too_large", Message: "request body too large"}
	case errors.Is(err, ErrMalformedBody):
		return http.StatusBadRequest, ErrorResponse{Code: "invalid_argument", Message: ErrMalformedBody.Error()}
	case errors.Is(err, ErrMethodNotAllowed):
		msg := "method not allowed"
		if errors.As(err, &withMsg) {
			msg = withMsg.Message()
		}
		return http.StatusMethodNotAllowed, ErrorResponse{Code: "method_not_allowed", Message: msg}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{Code: "rate_limited", Message: "too many requests"}
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, ErrorResponse{Code: "canceled", Message: "canceled"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Code: "deadline_exceeded", Message: "deadline exceeded"}
	default:
		return internal()
	}
}

func internal() (int, ErrorResponse) {
	return http.StatusInternalServerError, ErrorResponse{Code: "internal", Message: "internal error"}
}

// WriteError - хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
