// Package goquery reads page metadata from HTML using goquery selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/readlater"
)

// Limits on how much is collected from a single page.
const (
	MaxImages = 20
	MaxLinks  = 50
)

var (
	titleSelectors = []string{
		`meta[property="og:title"]`,
		`meta[name="twitter:title"]`,
	}
	descriptionSelectors = []string{
		`meta[name="description"]`,
		`meta[property="og:description"]`,
		`meta[name="twitter:description"]`,
	}
	imageSelectors = []string{
		`meta[property="og:image:secure_url"]`,
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
		`meta[name="twitter:image:src"]`,
	}
	// contentScopes are tried in order; the first match bounds where
	// in-content images and links are collected.
	contentScopes = []string{"article", "main", `[role="main"]`, "body"}

	lazySrcAttrs = []string{"src", "data-src", "data-lazy-src", "data-original"}
)

// Ensure Scraper implements readlater.MetadataScraper at compile time.
var _ readlater.MetadataScraper = (*Scraper)(nil)

// Scraper reads title, description, lead image, in-content images and
// links from HTML.
type Scraper struct{}

// NewScraper creates a new Scraper.
func NewScraper() *Scraper {
	return &Scraper{}
}

// Scrape parses html and returns its metadata. pageURL resolves relative
// links; images are returned as found.
func (s *Scraper) Scrape(html string, pageURL string) (*readlater.PageMetadata, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, readlater.Errorf(readlater.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, readlater.Errorf(readlater.EINVALID, "failed to parse HTML: %v", err)
	}

	meta := &readlater.PageMetadata{
		Title:       firstContent(doc, titleSelectors),
		Description: firstContent(doc, descriptionSelectors),
		Image:       firstContent(doc, imageSelectors),
	}
	if meta.Title == "" {
		meta.Title = collapse(doc.Find("title").First().Text())
	}
	if meta.Title == "" {
		meta.Title = collapse(doc.Find("h1").First().Text())
	}
	if meta.Image == "" {
		meta.Image, _ = doc.Find(`link[rel="image_src"]`).First().Attr("href")
	}

	scope := contentScope(doc)
	meta.Images = images(scope)
	meta.Links = links(scope, base)

	return meta, nil
}

func firstContent(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = collapse(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func contentScope(doc *goquery.Document) *goquery.Selection {
	for _, sel := range contentScopes {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return doc.Selection
}

func images(scope *goquery.Selection) []readlater.ArticleImage {
	seen := make(map[string]bool)
	var result []readlater.ArticleImage

	scope.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := imageSource(img)
		if src == "" || seen[src] || isTrackingPixel(img) {
			return true
		}
		seen[src] = true

		alt, _ := img.Attr("alt")
		result = append(result, readlater.ArticleImage{
			URL:     src,
			Alt:     collapse(alt),
			Caption: collapse(img.Closest("figure").Find("figcaption").First().Text()),
		})
		return len(result) < MaxImages
	})

	return result
}

// imageSource returns the first usable source of img, looking at lazy
// loading attributes and srcset.
func imageSource(img *goquery.Selection) string {
	for _, attr := range lazySrcAttrs {
		if v, ok := img.Attr(attr); ok {
			v = strings.TrimSpace(v)
			if v != "" && !strings.HasPrefix(strings.ToLower(v), "data:") {
				return v
			}
		}
	}
	if srcset, ok := img.Attr("srcset"); ok {
		if first := strings.Fields(strings.Split(srcset, ",")[0]); len(first) > 0 {
			return first[0]
		}
	}
	return ""
}

func isTrackingPixel(img *goquery.Selection) bool {
	w, _ := img.Attr("width")
	h, _ := img.Attr("height")
	return w == "1" || h == "1"
}

func links(scope *goquery.Selection, base *url.URL) []readlater.ArticleReference {
	seen := make(map[string]bool)
	var result []readlater.ArticleReference

	scope.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") || isNonHTTPLink(href) {
			return true
		}

		resolved := resolveURL(base, href)
		text := collapse(a.Text())
		if resolved == "" || text == "" || seen[resolved] {
			return true
		}
		seen[resolved] = true

		result = append(result, readlater.ArticleReference{Text: text, URL: resolved})
		return len(result) < MaxLinks
	})

	return result
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed or if the resolved URL
// is self-referential (same as base URL after stripping fragment).
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
