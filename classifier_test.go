package readlater_test

import (
	"testing"

	"github.com/fwojciec/readlater"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		kind    readlater.Kind
		videoID string
	}{
		{"watch URL", "https://youtube.com/watch?v=abc123", readlater.KindVideo, "abc123"},
		{"watch URL with www and params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", readlater.KindVideo, "dQw4w9WgXcQ"},
		{"watch URL with v not first", "https://www.youtube.com/watch?feature=share&v=xyz789", readlater.KindVideo, "xyz789"},
		{"mobile watch URL", "https://m.youtube.com/watch?v=abc123", readlater.KindVideo, "abc123"},
		{"short link", "https://youtu.be/abc123?si=tracking", readlater.KindVideo, "abc123"},
		{"shorts", "https://www.youtube.com/shorts/Sh0rt1d", readlater.KindVideo, "Sh0rt1d"},
		{"embed", "https://www.youtube.com/embed/emb3d#t=10", readlater.KindVideo, "emb3d"},
		{"legacy v path", "https://www.youtube.com/v/legacy1", readlater.KindVideo, "legacy1"},
		{"live", "https://www.youtube.com/live/l1ve", readlater.KindVideo, "l1ve"},
		{"article", "https://example.com/news/1", readlater.KindArticle, ""},
		{"channel page", "https://www.youtube.com/@somechannel", readlater.KindArticle, ""},
		{"watch without id", "https://youtube.com/watch?v=", readlater.KindArticle, ""},
		{"uppercase host", "https://WWW.YouTube.com/watch?v=abc123", readlater.KindVideo, "abc123"},
		{"video URL in query of another site", "https://example.com/?next=youtube.com/watch?v=abc", readlater.KindArticle, ""},
		{"lookalike host", "https://notyoutube.com/watch?v=x", readlater.KindArticle, ""},
		{"lookalike short host", "https://notyoutu.be/abc123", readlater.KindArticle, ""},
		{"video path on another site", "https://example.com/youtube.com/shorts/abc", readlater.KindArticle, ""},
		{"short link without id", "https://youtu.be/", readlater.KindArticle, ""},
		{"garbage", "not a url at all", readlater.KindArticle, ""},
		{"empty", "", readlater.KindArticle, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := readlater.Classify(tt.url)

			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.videoID, got.VideoID)
		})
	}
}

func TestVideoThumbnailURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://img.youtube.com/vi/abc123/maxresdefault.jpg", readlater.VideoThumbnailURL("abc123"))
}
