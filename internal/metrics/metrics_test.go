package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCommentCreated(t *testing.T) {
	m := New()

	m.CommentCreated()
	m.CommentCreated()

	require.Equal(t, 2.0, testutil.ToFloat64(m.commentsCreated))
}

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodPost, "/api/comments", http.StatusCreated, 10*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/comments", "201")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
	require.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestPanicsAndTimeouts_ByRoute(t *testing.T) {
	m := New()

	m.PanicRecovered("/comments")
	m.PanicRecovered("")
	m.RequestTimedOut("/posts/{post_id}/comments")
	m.RequestTimedOut("/posts/{post_id}/comments")

	require.Equal(t, 1.0, testutil.ToFloat64(m.panics.WithLabelValues("/comments")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.panics.WithLabelValues("unmatched")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.timeouts.WithLabelValues("/posts/{post_id}/comments")))
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.CommentCreated()
		m.ObserveRequest(http.MethodGet, "/x", http.StatusOK, time.Millisecond)
		m.PanicRecovered("/x")
		m.RequestTimedOut("/x")
	})
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.CommentCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, "comments_api_comments_created_total 1"))
	require.True(t, strings.Contains(body, "go_goroutines"))
}
