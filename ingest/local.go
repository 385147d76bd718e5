package ingest

import (
	"context"
	"errors"
	"strings"

	"github.com/fwojciec/readlater"
)

// Ensure LocalStrategy implements readlater.Strategy at compile time.
var _ readlater.Strategy = (*LocalStrategy)(nil)

// LocalStrategy extracts articles without any external service: it fetches
// the page, scrapes its metadata, isolates the main content with the first
// Extractor that finds some and converts it to Markdown. When no extractor
// finds content the whole page is normalized instead.
type LocalStrategy struct {
	Fetcher    readlater.Fetcher
	Scraper    readlater.MetadataScraper
	Extractors []readlater.Extractor
	Normalizer readlater.Normalizer
}

// Name identifies the strategy.
func (s *LocalStrategy) Name() string {
	return "local"
}

// Attempt fetches and extracts target.
func (s *LocalStrategy) Attempt(ctx context.Context, target readlater.Target) readlater.Attempt {
	page, err := s.Fetcher.Fetch(ctx, target.URL)
	if err != nil {
		return readlater.Failed(readlater.ENETWORK, err)
	}

	meta := &readlater.PageMetadata{}
	if s.Scraper != nil {
		if m, err := s.Scraper.Scrape(page.HTML, target.URL); err == nil {
			meta = m
		}
	}

	var errs []error
	var main *readlater.ExtractResult
	for _, ex := range s.Extractors {
		res, err := ex.Extract(page.HTML, target.URL)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if strings.TrimSpace(res.ContentHTML) != "" {
			main = res
			break
		}
	}

	body := page.HTML
	if main != nil {
		body = main.ContentHTML
	} else {
		main = &readlater.ExtractResult{}
	}
	content := s.Normalizer.Normalize(body)
	if content == "" {
		err := readlater.WrapError(readlater.EEXTRACTION, errors.Join(errs...), "no extractable text in %s", target.URL)
		return readlater.Failed(readlater.EEXTRACTION, err)
	}

	title := firstNonEmpty(meta.Title, main.Title)
	image := firstNonEmpty(meta.Image, main.Image)
	draft := readlater.Draft{
		Title:      title,
		Excerpt:    firstNonEmpty(meta.Description, main.Excerpt),
		Content:    content,
		ImageURL:   image,
		References: []readlater.ArticleReference{{Text: OriginalReferenceText, URL: target.URL}},
	}

	if image != "" {
		draft.Images = append(draft.Images, readlater.ArticleImage{URL: image, Alt: title})
	}
	for _, img := range meta.Images {
		if img.URL != image {
			draft.Images = append(draft.Images, img)
		}
	}
	for _, link := range meta.Links {
		if link.URL != target.URL {
			draft.References = append(draft.References, link)
		}
	}
	return readlater.Succeeded(draft)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
