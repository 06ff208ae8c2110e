package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/blog-comments/internal/service"
)

type methodErr struct{ method string }

func (e *methodErr) Error() string   { return "unsupported method " + e.method }
func (e *methodErr) Message() string { return "Unsupported method " + e.method }
func (e *methodErr) Unwrap() error   { return ErrMethodNotAllowed }

func TestToHTTP_Mapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			"validation",
			fmt.Errorf("op: %w", &service.ValidationError{Field: "body", Message: "body is required"}),
			http.StatusBadRequest, "invalid_argument", "body is required",
		},
		{"validation sentinel", service.ErrValidation, http.StatusBadRequest, "invalid_argument", "invalid argument"},
		{"malformed", fmt.Errorf("decode: %w", ErrMalformedBody), http.StatusBadRequest, "invalid_argument", "malformed request body"},
		{"too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large"},
		{"method", &methodErr{method: "GET"}, http.StatusMethodNotAllowed, "method_not_allowed", "Unsupported method GET"},
		{"method sentinel", ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "too many requests"},
		{"canceled", fmt.Errorf("x: %w", context.Canceled), StatusClientClosedRequest, "canceled", "canceled"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
		{"store", fmt.Errorf("op: %w", service.ErrStoreUnavailable), http.StatusInternalServerError, "internal", "internal error"},
		{"unknown", errors.New("connection refused to 10.0.0.1"), http.StatusInternalServerError, "internal", "internal error"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Code)
			require.Equal(t, tc.wantMsg, resp.Message)
		})
	}
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Code)
	require.Equal(t, "internal error", resp.Message)
}

func TestWriteError_FlatBodyWithRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/comments", nil)
	req.Header.Set("X-Request-Id", "rid-1")

	WriteError(rr, req, fmt.Errorf("op: %w", service.ErrStoreUnavailable))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "internal", body["code"])
	require.Equal(t, "internal error", body["message"])
	require.Equal(t, "rid-1", body["request_id"])
	require.NotContains(t, rr.Body.String(), "store unavailable")
}

func TestWriteError_OmitsEmptyRequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodGet, "/", nil), ErrRateLimited)

	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.NotContains(t, rr.Body.String(), "request_id")
}
