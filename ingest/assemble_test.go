package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/readlater"
	"github.com/fwojciec/readlater/ingest"
	"github.com/fwojciec/readlater/markdown"
	"github.com/fwojciec/readlater/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore returns an ArticleService that sends created articles on
// the returned channel.
func recordingStore() (*mock.ArticleService, chan *readlater.Article) {
	created := make(chan *readlater.Article, 1)
	return &mock.ArticleService{
		CreateArticleFn: func(_ context.Context, a *readlater.Article) error {
			a.ID = "id-1"
			created <- a
			return nil
		},
	}, created
}

func TestAssembler_Assemble(t *testing.T) {
	t.Parallel()

	t.Run("builds and saves article", func(t *testing.T) {
		t.Parallel()

		store, created := recordingStore()
		a := &ingest.Assembler{Articles: store, Normalizer: markdown.NewNormalizer()}
		draft := readlater.Draft{
			Title:    "Bike lanes &amp; buses",
			Excerpt:  "<p>The council <b>approved</b> lanes.</p>",
			Content:  "<h1>Bike lanes</h1><p>Hello <strong>world</strong></p>",
			ImageURL: "https://example.com/lead.jpg",
			Images:   []readlater.ArticleImage{{URL: "https://example.com/lead.jpg"}},
		}

		article, err := a.Assemble(context.Background(), "user-1", target, draft)

		require.NoError(t, err)
		assert.Same(t, article, <-created)
		assert.Equal(t, "id-1", article.ID)
		assert.Equal(t, "user-1", article.OwnerID)
		assert.Equal(t, target.URL, article.URL)
		assert.Equal(t, "example.com", article.Domain)
		assert.Equal(t, "Bike lanes & buses", article.Title)
		assert.Equal(t, "The council approved lanes.", article.Excerpt)
		assert.Equal(t, "# Bike lanes\n\nHello **world**", article.Content)
		assert.Equal(t, "https://example.com/lead.jpg", article.ImageURL)
		assert.Equal(t, []readlater.ArticleReference{{Text: "Original article", URL: target.URL}}, article.References)
		assert.Equal(t, 1, article.ReadingTime)
		assert.False(t, article.IsVideo)
	})

	t.Run("defaults title and derives excerpt from content", func(t *testing.T) {
		t.Parallel()

		store, _ := recordingStore()
		a := &ingest.Assembler{Articles: store, Normalizer: markdown.NewNormalizer()}
		content := strings.Repeat("word ", 450)

		article, err := a.Assemble(context.Background(), "user-1", target, readlater.Draft{Content: content})

		require.NoError(t, err)
		assert.Equal(t, "Article from example.com", article.Title)
		assert.LessOrEqual(t, utf8.RuneCountInString(article.Excerpt), readlater.MaxExcerptLength)
		assert.True(t, strings.HasPrefix(article.Excerpt, "word word"))
		assert.Equal(t, 3, article.ReadingTime)
	})

	t.Run("adds source reference when missing", func(t *testing.T) {
		t.Parallel()

		store, _ := recordingStore()
		a := &ingest.Assembler{Articles: store}
		draft := readlater.Draft{
			Title:      "T",
			Content:    "Body",
			References: []readlater.ArticleReference{{Text: "Council", URL: "https://council.example.org"}},
		}

		article, err := a.Assemble(context.Background(), "user-1", target, draft)

		require.NoError(t, err)
		assert.Equal(t, []readlater.ArticleReference{
			{Text: "Original article", URL: target.URL},
			{Text: "Council", URL: "https://council.example.org"},
		}, article.References)
	})

	t.Run("wraps store failure as persistence error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("disk full")
		a := &ingest.Assembler{Articles: &mock.ArticleService{
			CreateArticleFn: func(context.Context, *readlater.Article) error { return cause },
		}}

		article, err := a.Assemble(context.Background(), "user-1", target, readlater.Draft{Title: "T", Content: "Body"})

		assert.Nil(t, article)
		assert.Equal(t, readlater.EPERSISTENCE, readlater.ErrorCode(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("bounds store write by timeout", func(t *testing.T) {
		t.Parallel()

		a := &ingest.Assembler{
			Articles: &mock.ArticleService{
				CreateArticleFn: func(ctx context.Context, _ *readlater.Article) error {
					<-ctx.Done()
					return ctx.Err()
				},
			},
			Timeout: 20 * time.Millisecond,
		}

		_, err := a.Assemble(context.Background(), "user-1", target, readlater.Draft{Title: "T", Content: "Body"})

		assert.Equal(t, readlater.EPERSISTENCE, readlater.ErrorCode(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("rejects invalid article without saving", func(t *testing.T) {
		t.Parallel()

		a := &ingest.Assembler{Articles: &mock.ArticleService{}}

		_, err := a.Assemble(context.Background(), "", target, readlater.Draft{Title: "T", Content: "Body"})

		assert.Equal(t, readlater.EINVALID, readlater.ErrorCode(err))
	})
}

func TestAssembler_AssembleVideo(t *testing.T) {
	t.Parallel()

	store, created := recordingStore()
	a := &ingest.Assembler{Articles: store}
	video, err := readlater.NewTarget("https://youtu.be/abc123")
	require.NoError(t, err)

	article, err := a.AssembleVideo(context.Background(), "user-1", video, "abc123")

	require.NoError(t, err)
	assert.Same(t, article, <-created)
	assert.True(t, article.IsVideo)
	assert.Equal(t, "abc123", article.VideoID)
	assert.Equal(t, "youtube.com", article.Domain)
	assert.Equal(t, "YouTube video: abc123", article.Title)
	assert.Equal(t, "# YouTube video\n\n[Watch on YouTube](https://youtu.be/abc123)\n\nVideo ID: abc123", article.Content)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/maxresdefault.jpg", article.ImageURL)
	require.Len(t, article.Images, 1)
	assert.Equal(t, article.ImageURL, article.Images[0].URL)
	assert.Equal(t, []readlater.ArticleReference{{Text: "Watch on YouTube", URL: "https://youtu.be/abc123"}}, article.References)
	assert.Equal(t, 1, article.ReadingTime)
}
