// Package commentsclient - HTTP-клиент API комментариев.
//
// Ошибки сервера возвращаются как *APIError; его Message() - текст, который
// сервер предназначил для показа пользователю (см. async.Message).
package commentsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Comment - комментарий в представлении API.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Author    string    `json:"author"`
	Contact   string    `json:"contact,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateRequest - поля нового комментария.
type CreateRequest struct {
	PostID  string `json:"postId"`
	Author  string `json:"author"`
	Contact string `json:"contact,omitempty"`
	Body    string `json:"body"`
}

// APIError - ответ сервера со статусом вне 2xx.
type APIError struct {
	Status    int
	Code      string
	Msg       string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("comments api: status %d (%s): %s", e.Status, e.Code, e.Msg)
}

// Message - текст ошибки от сервера, пригодный для показа пользователю.
func (e *APIError) Message() string {
	return e.Msg
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient подменяет транспорт (тесты, кастомные таймауты).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New создаёт клиент. baseURL включает базовый путь API, например http://localhost:8080/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    NewHTTPClient(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewHTTPClient - http.Client с ограниченными таймаутами соединения и редиректами.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          25,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		CheckRedirect: redirectPolicyFunc,
	}
}

func redirectPolicyFunc(req *http.Request, via []*http.Request) error {
	if len(via) >= 2 {
		return fmt.Errorf("attempted redirect to %s", req.URL)
	}
	return nil
}

// CreateComment - POST /comments.
func (c *Client) CreateComment(ctx context.Context, in CreateRequest) (*Comment, error) {
	const op = "commentsclient/CreateComment"

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal: %w", op, err)
	}

	var out Comment
	if err := c.do(ctx, http.MethodPost, "/comments", nil, bytes.NewReader(payload), http.StatusCreated, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// ListByPost - GET /posts/{postID}/comments.
func (c *Client) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	const op = "commentsclient/ListByPost"

	var out struct {
		Comments []Comment `json:"comments"`
	}

	path := "/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.Comments == nil {
		out.Comments = []Comment{}
	}

	return out.Comments, nil
}

// Counts - GET /comments/counts.
func (c *Client) Counts(ctx context.Context, postIDs []string) (map[string]int, error) {
	const op = "commentsclient/Counts"

	q := url.Values{}
	for _, id := range postIDs {
		q.Add("postId", id)
	}

	var out struct {
		Counts map[string]int `json:"counts"`
	}
	if err := c.do(ctx, http.MethodGet, "/comments/counts", q, nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Counts, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, want int, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// decodeAPIError читает тело ошибки {"code","message","request_id"};
// при нечитаемом теле сообщение берётся из статуса.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		RequestID: resp.Header.Get("X-Request-Id"),
	}

	var body struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && json.Unmarshal(raw, &body) == nil {
		apiErr.Code = body.Code
		apiErr.Msg = body.Message
		if body.RequestID != "" {
			apiErr.RequestID = body.RequestID
		}
	}

	if apiErr.Msg == "" {
		apiErr.Msg = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// IsStatus сообщает, что err - ответ сервера с указанным статусом.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
