package gin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/readlater"
	rlgin "github.com/fwojciec/readlater/gin"
	rlhttp "github.com/fwojciec/readlater/http"
	"github.com/fwojciec/readlater/mock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, s *rlgin.Server, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns fetch result", func(t *testing.T) {
		t.Parallel()

		requested := make(chan string, 1)
		s := &rlgin.Server{
			Logger: quietLogger(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (*readlater.FetchResult, error) {
					requested <- url
					return &readlater.FetchResult{HTML: "<p>hi</p>", Status: 200, ContentType: "text/html"}, nil
				},
			},
		}

		rec := serve(t, s, "/fetch?url=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://example.com/a?b=c", <-requested)

		var got readlater.FetchResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "<p>hi</p>", got.HTML)
		assert.Equal(t, 200, got.Status)
		assert.Equal(t, "text/html", got.ContentType)
	})

	t.Run("rejects invalid URLs", func(t *testing.T) {
		t.Parallel()

		for _, target := range []string{"/fetch", "/fetch?url=ftp%3A%2F%2Fexample.com", "/fetch?url=not-a-url"} {
			s := &rlgin.Server{
				Logger: quietLogger(),
				Fetcher: &mock.Fetcher{
					FetchFn: func(ctx context.Context, url string) (*readlater.FetchResult, error) {
						t.Fatalf("fetch called for %s", url)
						return nil, nil
					},
				},
			}

			rec := serve(t, s, target, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
			assert.Contains(t, rec.Body.String(), `"error"`, target)
		}
	})

	t.Run("reports origin status as bad gateway", func(t *testing.T) {
		t.Parallel()

		s := &rlgin.Server{
			Logger: quietLogger(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (*readlater.FetchResult, error) {
					return nil, readlater.HTTPErrorf(http.StatusForbidden, "HTTP 403 for %s", url)
				},
			},
		}

		rec := serve(t, s, "/fetch?url=https%3A%2F%2Fexample.com", nil)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		var body rlhttp.ProxyError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, http.StatusForbidden, body.Status)
		assert.Equal(t, "HTTP 403 for https://example.com", body.Error)
	})

	t.Run("reports network failures without status", func(t *testing.T) {
		t.Parallel()

		s := &rlgin.Server{
			Logger: quietLogger(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (*readlater.FetchResult, error) {
					return nil, readlater.Errorf(readlater.ENETWORK, "connection refused")
				},
			},
		}

		rec := serve(t, s, "/fetch?url=https%3A%2F%2Fexample.com", nil)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"connection refused"}`, rec.Body.String())
	})

	t.Run("applies fetch timeout", func(t *testing.T) {
		t.Parallel()

		s := &rlgin.Server{
			Logger:  quietLogger(),
			Timeout: 20 * time.Millisecond,
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (*readlater.FetchResult, error) {
					<-ctx.Done()
					return nil, readlater.WrapError(readlater.ENETWORK, ctx.Err(), "fetching %s", url)
				},
			},
		}

		rec := serve(t, s, "/fetch?url=https%3A%2F%2Fexample.com", nil)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "deadline exceeded")
	})

	t.Run("requires bearer token when configured", func(t *testing.T) {
		t.Parallel()

		s := &rlgin.Server{
			Logger: quietLogger(),
			Token:  "secret",
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (*readlater.FetchResult, error) {
					return &readlater.FetchResult{HTML: "ok", Status: 200}, nil
				},
			},
		}

		rec := serve(t, s, "/fetch?url=https%3A%2F%2Fexample.com", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = serve(t, s, "/fetch?url=https%3A%2F%2Fexample.com", http.Header{"Authorization": {"Bearer wrong"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = serve(t, s, "/fetch?url=https%3A%2F%2Fexample.com", http.Header{"Authorization": {"Bearer secret"}})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("logs requests", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		s := &rlgin.Server{
			Logger: slog.New(slog.NewTextHandler(&buf, nil)),
			Fetcher: &mock.Fetcher{
				FetchFn: func(ctx context.Context, url string) (*readlater.FetchResult, error) {
					return nil, readlater.HTTPErrorf(http.StatusNotFound, "HTTP 404")
				},
			},
		}

		serve(t, s, "/fetch?url=https%3A%2F%2Fexample.com%2Fmissing", nil)

		output := buf.String()
		assert.Contains(t, output, "msg=request")
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "status=502")
		assert.Contains(t, output, "url=https://example.com/missing")
		assert.Contains(t, output, "err=")
	})
}

func TestServer_Healthz(t *testing.T) {
	t.Parallel()

	s := &rlgin.Server{Logger: quietLogger(), Token: "secret"}

	rec := serve(t, s, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ProxyFetcher(t *testing.T) {
	t.Parallel()

	s := &rlgin.Server{
		Logger: quietLogger(),
		Token:  "secret",
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*readlater.FetchResult, error) {
				if url == "https://example.com/gone" {
					return nil, readlater.HTTPErrorf(http.StatusGone, "HTTP 410")
				}
				return &readlater.FetchResult{HTML: "<h1>" + url + "</h1>", Status: 200}, nil
			},
		},
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	fetcher := rlhttp.NewProxyFetcher(srv.URL, rlhttp.WithProxyToken("secret"))

	t.Run("round trips result", func(t *testing.T) {
		t.Parallel()

		result, err := fetcher.Fetch(context.Background(), "https://example.com/a")

		require.NoError(t, err)
		assert.Equal(t, "<h1>https://example.com/a</h1>", result.HTML)
		assert.Equal(t, 200, result.Status)
	})

	t.Run("carries origin status", func(t *testing.T) {
		t.Parallel()

		_, err := fetcher.Fetch(context.Background(), "https://example.com/gone")

		assert.Equal(t, readlater.EHTTP, readlater.ErrorCode(err))
		assert.Equal(t, http.StatusGone, readlater.ErrorStatus(err))
	})
}
