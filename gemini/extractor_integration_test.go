//go:build integration

package gemini_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/readlater"
	"github.com/fwojciec/readlater/gemini"
	rlhttp "github.com/fwojciec/readlater/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Integration_KeepsLanguage(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Nuevos carriles bici</title>
<meta property="og:image" content="/img/carriles.jpg"></head>
<body><article><h1>Nuevos carriles bici</h1>
<p>El ayuntamiento aprobó el martes la construcción de carriles bici protegidos en tres calles del centro.</p>
</article></body></html>`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	target, err := readlater.NewTarget(server.URL + "/noticia")
	require.NoError(t, err)

	ext := gemini.NewExtractor(gemini.NewClient(apiKey), rlhttp.NewFetcher())
	a := ext.Attempt(ctx, target)

	require.True(t, a.OK(), "attempt failed: %v", a.Err())
	d := a.Draft()
	assert.Contains(t, strings.ToLower(d.Title), "carriles")
	assert.Contains(t, d.Content, "ayuntamiento")
	assert.Equal(t, server.URL+"/img/carriles.jpg", d.ImageURL)
}

func TestTokenCounter_Integration_CountsTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter("gemini-2.0-flash")
	require.NoError(t, err)

	count, err := tc.CountTokens(context.Background(), "Hello, world!")
	require.NoError(t, err)
	assert.Positive(t, count)

	count, err = tc.CountTokens(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
