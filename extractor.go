package readlater

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// Excerpt is a short description from metadata, if any.
	Excerpt string

	// Image is the lead image URL as found in the page, possibly relative.
	Image string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	// The pageURL is used to resolve relative references and may be empty.
	Extract(html string, pageURL string) (*ExtractResult, error)
}

// Target identifies the page a Strategy should extract.
type Target struct {
	// URL is the submitted URL.
	URL string

	// Origin is scheme and host of URL, e.g. "https://example.com".
	Origin string

	// Domain is the hostname of URL.
	Domain string
}

// NewTarget parses rawURL into a Target.
// Returns EINVALID unless rawURL is an absolute http or https URL.
func NewTarget(rawURL string) (Target, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Target{}, Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Target{}, Errorf(EINVALID, "URL %q must use http or https", rawURL)
	}
	if u.Hostname() == "" {
		return Target{}, Errorf(EINVALID, "URL %q has no host", rawURL)
	}
	return Target{
		URL:    u.String(),
		Origin: u.Scheme + "://" + u.Host,
		Domain: u.Hostname(),
	}, nil
}

// Attempt is the outcome of a single extraction strategy. It either
// succeeded with a Draft or failed with an error carrying an error code.
type Attempt struct {
	draft *Draft
	err   error
}

// Succeeded returns a successful Attempt holding draft.
func Succeeded(draft Draft) Attempt {
	return Attempt{draft: &draft}
}

// Failed returns a failed Attempt. If err is not already an application
// error with a code, it is wrapped with code.
func Failed(code string, err error) Attempt {
	var e *Error
	if err == nil {
		err = Errorf(code, "extraction failed")
	} else if !errors.As(err, &e) {
		err = WrapError(code, err, "")
	}
	return Attempt{err: err}
}

// OK reports whether the attempt succeeded.
func (a Attempt) OK() bool {
	return a.draft != nil
}

// Draft returns the extracted draft. It is only meaningful when OK is true.
func (a Attempt) Draft() Draft {
	if a.draft == nil {
		return Draft{}
	}
	return *a.draft
}

// Err returns the failure cause, or nil for a successful attempt.
func (a Attempt) Err() error {
	return a.err
}

// Code returns the error code of a failed attempt, or "" on success.
func (a Attempt) Code() string {
	return ErrorCode(a.err)
}

// Strategy is one way of turning a URL into a Draft. Strategies catch their
// own errors and report them through the returned Attempt.
type Strategy interface {
	// Name identifies the strategy in logs and errors.
	Name() string

	// Attempt extracts the target. It must honor ctx cancellation.
	Attempt(ctx context.Context, target Target) Attempt
}

// Normalizer rewrites third-party markup into the canonical Markdown body
// format. Normalize is total: malformed input degrades to plain text.
type Normalizer interface {
	Normalize(html string) string
}

// PageMetadata holds metadata scraped from an HTML page. Image and image
// URLs are as found in the page and may be relative.
type PageMetadata struct {
	Title       string
	Description string
	Image       string
	Images      []ArticleImage
	Links       []ArticleReference
}

// MetadataScraper reads page metadata such as title, description, lead
// image, in-content images and outbound links.
type MetadataScraper interface {
	Scrape(html string, pageURL string) (*PageMetadata, error)
}
