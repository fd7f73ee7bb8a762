package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The logging wrapper must stay hijackable or websocket upgrades behind it
// fail their handshake.
func TestLoggingMiddlewarePreservesHijacker(t *testing.T) {
	var hijackable bool
	srv := httptest.NewServer(LoggingMiddleware(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			_, hijackable = w.(http.Hijacker)
			w.WriteHeader(http.StatusNoContent)
		})))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.True(t, hijackable, "wrapped writer must implement http.Hijacker")
}

func TestLoggingMiddlewareStatusCapture(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
