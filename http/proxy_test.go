package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/readlater"
	rlhttp "github.com/fwojciec/readlater/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProxyFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("decodes fetch result", func(t *testing.T) {
		t.Parallel()

		type request struct{ path, url, auth string }
		requests := make(chan request, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests <- request{
				path: r.URL.Path,
				url:  r.URL.Query().Get("url"),
				auth: r.Header.Get("Authorization"),
			}
			_ = json.NewEncoder(w).Encode(readlater.FetchResult{
				HTML:        "<p>proxied</p>",
				Status:      200,
				ContentType: "text/html",
			})
		}))
		defer server.Close()

		fetcher := rlhttp.NewProxyFetcher(server.URL+"/", rlhttp.WithProxyToken("secret"))

		result, err := fetcher.Fetch(context.Background(), "https://example.com/a?b=c&d=e")
		require.NoError(t, err)
		got := <-requests
		assert.Equal(t, "/fetch", got.path)
		assert.Equal(t, "https://example.com/a?b=c&d=e", got.url)
		assert.Equal(t, "Bearer secret", got.auth)
		assert.Equal(t, "<p>proxied</p>", result.HTML)
		assert.Equal(t, 200, result.Status)
		assert.Equal(t, "text/html", result.ContentType)
	})

	t.Run("maps origin status to EHTTP", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(rlhttp.ProxyError{Error: "HTTP 403", Status: 403})
		}))
		defer server.Close()

		fetcher := rlhttp.NewProxyFetcher(server.URL)

		_, err := fetcher.Fetch(context.Background(), "https://example.com")
		require.Error(t, err)
		assert.Equal(t, readlater.EHTTP, readlater.ErrorCode(err))
		assert.Equal(t, 403, readlater.ErrorStatus(err))
	})

	t.Run("maps proxy failure to EHTTP with proxy status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(rlhttp.ProxyError{Error: "dial tcp: connection refused"})
		}))
		defer server.Close()

		fetcher := rlhttp.NewProxyFetcher(server.URL)

		_, err := fetcher.Fetch(context.Background(), "https://example.com")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, readlater.ErrorStatus(err))
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("returns EINTERNAL for malformed response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		fetcher := rlhttp.NewProxyFetcher(server.URL)

		_, err := fetcher.Fetch(context.Background(), "https://example.com")
		require.Error(t, err)
		assert.Equal(t, readlater.EINTERNAL, readlater.ErrorCode(err))
	})

	t.Run("returns ENETWORK when proxy is unreachable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		fetcher := rlhttp.NewProxyFetcher(url)

		_, err := fetcher.Fetch(context.Background(), "https://example.com")
		require.Error(t, err)
		assert.Equal(t, readlater.ENETWORK, readlater.ErrorCode(err))
	})
}
