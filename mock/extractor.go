package mock

import (
	"context"

	"github.com/fwojciec/readlater"
)

var _ readlater.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of readlater.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*readlater.ExtractResult, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*readlater.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

var _ readlater.MetadataScraper = (*MetadataScraper)(nil)

// MetadataScraper is a mock implementation of readlater.MetadataScraper.
type MetadataScraper struct {
	ScrapeFn func(html string, pageURL string) (*readlater.PageMetadata, error)
}

func (s *MetadataScraper) Scrape(html string, pageURL string) (*readlater.PageMetadata, error) {
	return s.ScrapeFn(html, pageURL)
}

var _ readlater.Strategy = (*Strategy)(nil)

// Strategy is a mock implementation of readlater.Strategy.
type Strategy struct {
	NameFn    func() string
	AttemptFn func(ctx context.Context, target readlater.Target) readlater.Attempt
}

func (s *Strategy) Name() string {
	if s.NameFn == nil {
		return "mock"
	}
	return s.NameFn()
}

func (s *Strategy) Attempt(ctx context.Context, target readlater.Target) readlater.Attempt {
	return s.AttemptFn(ctx, target)
}

var _ readlater.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of readlater.Normalizer.
type Normalizer struct {
	NormalizeFn func(html string) string
}

func (n *Normalizer) Normalize(html string) string {
	return n.NormalizeFn(html)
}
