package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	main "github.com/fwojciec/readlater/cmd/fetchproxy"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}

	err := main.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "--addr")
	assert.Contains(t, stdout.String(), "--browser-tls")
}

func TestNewServer(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	t.Run("serves health check", func(t *testing.T) {
		t.Parallel()

		s := main.NewServer(main.Config{Timeout: time.Second}, quietLogger())
		rec := httptest.NewRecorder()

		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("blocks private origins by default", func(t *testing.T) {
		t.Parallel()

		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<p>secret</p>"))
		}))
		defer origin.Close()

		s := main.NewServer(main.Config{Timeout: time.Second}, quietLogger())
		rec := httptest.NewRecorder()

		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fetch?url="+origin.URL, nil))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret")
	})

	t.Run("fetches private origins when allowed", func(t *testing.T) {
		t.Parallel()

		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>local</p>"))
		}))
		defer origin.Close()

		s := main.NewServer(main.Config{Timeout: time.Second, AllowPrivate: true}, quietLogger())
		rec := httptest.NewRecorder()

		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fetch?url="+origin.URL, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<p>local</p>")
	})

	t.Run("requires configured token", func(t *testing.T) {
		t.Parallel()

		s := main.NewServer(main.Config{Timeout: time.Second, Token: "secret"}, quietLogger())
		rec := httptest.NewRecorder()

		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fetch?url=https://example.com", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
