package ingest

import (
	"context"
	"time"

	"github.com/fwojciec/readlater"
	"github.com/fwojciec/readlater/markdown"
)

// DefaultPersistTimeout bounds the record store write.
const DefaultPersistTimeout = 10 * time.Second

// OriginalReferenceText labels the reference pointing back at the source.
const OriginalReferenceText = "Original article"

// Assembler turns drafts into articles and saves them.
type Assembler struct {
	Articles   readlater.ArticleService
	Normalizer readlater.Normalizer

	// Timeout bounds CreateArticle. Defaults to DefaultPersistTimeout.
	Timeout time.Duration
}

// Assemble builds the article for draft and saves it for owner.
// The content is normalized, the excerpt is reduced to plain text of at
// most readlater.MaxExcerptLength characters (taken from the content when
// the draft has none) and missing titles and references get defaults.
// Returns EPERSISTENCE if the record store fails.
func (a *Assembler) Assemble(ctx context.Context, owner string, target readlater.Target, draft readlater.Draft) (*readlater.Article, error) {
	content := draft.Content
	if a.Normalizer != nil {
		content = a.Normalizer.Normalize(content)
	}

	excerpt := markdown.PlainText(draft.Excerpt)
	if excerpt == "" {
		excerpt = markdown.PlainText(content)
	}

	title := markdown.PlainText(draft.Title)
	if title == "" {
		title = "Article from " + target.Domain
	}

	article := &readlater.Article{
		OwnerID:     owner,
		URL:         target.URL,
		Domain:      target.Domain,
		Title:       title,
		Excerpt:     markdown.Truncate(excerpt, readlater.MaxExcerptLength),
		Content:     content,
		ImageURL:    draft.ImageURL,
		Images:      draft.Images,
		References:  withSource(draft.References, target.URL),
		ReadingTime: readlater.ReadingTime(content),
	}
	if err := a.save(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// AssembleVideo builds and saves the record for a recognized video link.
func (a *Assembler) AssembleVideo(ctx context.Context, owner string, target readlater.Target, videoID string) (*readlater.Article, error) {
	thumbnail := readlater.VideoThumbnailURL(videoID)
	title := "YouTube video: " + videoID
	content := "# YouTube video\n\n[Watch on YouTube](" + target.URL + ")\n\nVideo ID: " + videoID

	article := &readlater.Article{
		OwnerID:  owner,
		URL:      target.URL,
		Domain:   "youtube.com",
		Title:    title,
		Excerpt:  "YouTube video. Open it on YouTube to play.",
		Content:  content,
		ImageURL: thumbnail,
		Images: []readlater.ArticleImage{{
			URL:     thumbnail,
			Alt:     title,
			Caption: "YouTube video thumbnail",
		}},
		References:  []readlater.ArticleReference{{Text: "Watch on YouTube", URL: target.URL}},
		ReadingTime: readlater.ReadingTime(content),
		IsVideo:     true,
		VideoID:     videoID,
	}
	if err := a.save(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (a *Assembler) save(ctx context.Context, article *readlater.Article) error {
	if err := article.Validate(); err != nil {
		return err
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.Articles.CreateArticle(ctx, article); err != nil {
		return readlater.WrapError(readlater.EPERSISTENCE, err, "saving article")
	}
	return nil
}

// withSource returns refs with a reference to source first, unless refs
// already point at it.
func withSource(refs []readlater.ArticleReference, source string) []readlater.ArticleReference {
	for _, r := range refs {
		if r.URL == source {
			return refs
		}
	}
	return append([]readlater.ArticleReference{{Text: OriginalReferenceText, URL: source}}, refs...)
}
