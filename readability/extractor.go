// Package readability extracts main article content with go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/readlater"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements readlater.Extractor at compile time.
var _ readlater.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*readlater.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, readlater.Errorf(readlater.EINVALID, "empty HTML input")
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err != nil {
		return nil, err
	}

	return &readlater.ExtractResult{
		Title:       article.Title,
		Excerpt:     article.Excerpt,
		Image:       article.Image,
		ContentHTML: article.Content,
	}, nil
}
