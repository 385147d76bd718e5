package ingest_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/readlater"
	"github.com/fwojciec/readlater/goquery"
	"github.com/fwojciec/readlater/ingest"
	"github.com/fwojciec/readlater/markdown"
	"github.com/fwojciec/readlater/mock"
	"github.com/fwojciec/readlater/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><nav>Menu</nav><article><h1>Bike lanes</h1><p>The council approved lanes.</p></article><footer>c</footer></body></html>`

func extractor(content string, err error) *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(string, string) (*readlater.ExtractResult, error) {
			if err != nil {
				return nil, err
			}
			return &readlater.ExtractResult{Title: "Extracted title", Excerpt: "Extracted excerpt", Image: "/lead.jpg", ContentHTML: content}, nil
		},
	}
}

func scraper(meta *readlater.PageMetadata) *mock.MetadataScraper {
	return &mock.MetadataScraper{
		ScrapeFn: func(string, string) (*readlater.PageMetadata, error) {
			return meta, nil
		},
	}
}

func TestLocalStrategy_Attempt(t *testing.T) {
	t.Parallel()

	t.Run("combines metadata and main content", func(t *testing.T) {
		t.Parallel()

		s := &ingest.LocalStrategy{
			Fetcher: okFetcher(page, nil),
			Scraper: scraper(&readlater.PageMetadata{
				Title:       "Bike lanes approved",
				Description: "Council news",
				Image:       "/img/og.jpg",
				Images: []readlater.ArticleImage{
					{URL: "/img/og.jpg", Alt: "dup"},
					{URL: "/img/map.png", Alt: "Map", Caption: "The new lanes"},
				},
				Links: []readlater.ArticleReference{
					{Text: "Council", URL: "https://council.example.org"},
					{Text: "Self", URL: target.URL},
				},
			}),
			Extractors: []readlater.Extractor{extractor("<p>Hello <b>world</b></p>", nil)},
			Normalizer: markdown.NewNormalizer(),
		}

		a := s.Attempt(context.Background(), target)

		require.True(t, a.OK(), "attempt failed: %v", a.Err())
		d := a.Draft()
		assert.Equal(t, "Bike lanes approved", d.Title)
		assert.Equal(t, "Council news", d.Excerpt)
		assert.Equal(t, "Hello **world**", d.Content)
		assert.Equal(t, "/img/og.jpg", d.ImageURL)
		assert.Equal(t, []readlater.ArticleImage{
			{URL: "/img/og.jpg", Alt: "Bike lanes approved"},
			{URL: "/img/map.png", Alt: "Map", Caption: "The new lanes"},
		}, d.Images)
		assert.Equal(t, []readlater.ArticleReference{
			{Text: "Original article", URL: target.URL},
			{Text: "Council", URL: "https://council.example.org"},
		}, d.References)
	})

	t.Run("falls back to extractor metadata", func(t *testing.T) {
		t.Parallel()

		s := &ingest.LocalStrategy{
			Fetcher:    okFetcher(page, nil),
			Extractors: []readlater.Extractor{extractor("<p>Body</p>", nil)},
			Normalizer: markdown.NewNormalizer(),
		}

		a := s.Attempt(context.Background(), target)

		require.True(t, a.OK(), "attempt failed: %v", a.Err())
		assert.Equal(t, "Extracted title", a.Draft().Title)
		assert.Equal(t, "Extracted excerpt", a.Draft().Excerpt)
		assert.Equal(t, "/lead.jpg", a.Draft().ImageURL)
	})

	t.Run("tries next extractor", func(t *testing.T) {
		t.Parallel()

		s := &ingest.LocalStrategy{
			Fetcher: okFetcher(page, nil),
			Extractors: []readlater.Extractor{
				extractor("", readlater.Errorf(readlater.EINVALID, "broken")),
				extractor("  ", nil),
				extractor("<p>Third</p>", nil),
			},
			Normalizer: markdown.NewNormalizer(),
		}

		a := s.Attempt(context.Background(), target)

		require.True(t, a.OK(), "attempt failed: %v", a.Err())
		assert.Equal(t, "Third", a.Draft().Content)
	})

	t.Run("normalizes whole page when no extractor finds content", func(t *testing.T) {
		t.Parallel()

		s := &ingest.LocalStrategy{
			Fetcher:    okFetcher(page, nil),
			Extractors: []readlater.Extractor{extractor("", nil)},
			Normalizer: markdown.NewNormalizer(),
		}

		a := s.Attempt(context.Background(), target)

		require.True(t, a.OK(), "attempt failed: %v", a.Err())
		assert.Equal(t, "# Bike lanes\n\nThe council approved lanes.", a.Draft().Content)
	})

	t.Run("fails when page has no text", func(t *testing.T) {
		t.Parallel()

		s := &ingest.LocalStrategy{
			Fetcher:    okFetcher("<script>app()</script>", nil),
			Extractors: []readlater.Extractor{extractor("", readlater.Errorf(readlater.EINVALID, "empty"))},
			Normalizer: markdown.NewNormalizer(),
		}

		a := s.Attempt(context.Background(), target)

		require.False(t, a.OK())
		assert.Equal(t, readlater.EEXTRACTION, a.Code())
	})

	t.Run("keeps fetch error code", func(t *testing.T) {
		t.Parallel()

		s := &ingest.LocalStrategy{
			Fetcher:    failingFetcher(readlater.HTTPErrorf(403, "HTTP 403")),
			Normalizer: markdown.NewNormalizer(),
		}

		a := s.Attempt(context.Background(), target)

		require.False(t, a.OK())
		assert.Equal(t, readlater.EHTTP, a.Code())
		assert.Equal(t, 403, readlater.ErrorStatus(a.Err()))
	})
}

func TestLocalStrategy_Attempt_RealComponents(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html><html lang="es"><head>
<title>Nuevos carriles bici | Diario</title>
<meta property="og:title" content="Nuevos carriles bici">
<meta name="description" content="El ayuntamiento aprueba carriles protegidos.">
<meta property="og:image" content="/img/carriles.jpg">
</head><body>
<nav><a href="/">Inicio</a></nav>
<article>
<h1>Nuevos carriles bici</h1>
<p>El ayuntamiento aprobó el martes la construcción de carriles bici protegidos en tres calles del centro de la ciudad.</p>
<p>Las obras comenzarán en primavera y durarán unos seis meses, según el concejal de movilidad.</p>
<p>Más información en la <a href="https://ayuntamiento.example.org/movilidad">web municipal</a>.</p>
</article>
<footer>© Diario</footer>
</body></html>`

	s := &ingest.LocalStrategy{
		Fetcher:    okFetcher(html, nil),
		Scraper:    goquery.NewScraper(),
		Extractors: []readlater.Extractor{trafilatura.NewExtractor()},
		Normalizer: markdown.NewNormalizer(),
	}

	a := s.Attempt(context.Background(), target)

	require.True(t, a.OK(), "attempt failed: %v", a.Err())
	d := a.Draft()
	assert.Equal(t, "Nuevos carriles bici", d.Title)
	assert.Equal(t, "El ayuntamiento aprueba carriles protegidos.", d.Excerpt)
	assert.Equal(t, "/img/carriles.jpg", d.ImageURL)
	assert.Contains(t, d.Content, "carriles bici protegidos")
	assert.False(t, strings.ContainsAny(d.Content, "<>"))
	assert.Contains(t, d.References, readlater.ArticleReference{Text: "web municipal", URL: "https://ayuntamiento.example.org/movilidad"})
}
