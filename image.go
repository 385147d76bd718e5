package readlater

import (
	"context"
	"net/url"
	"strings"
)

// ImageGenerator produces an illustrative image for an article.
type ImageGenerator interface {
	// GenerateImage returns a self-contained data URL for an image
	// matching prompt.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// ResolveImageURL turns a candidate image reference found in a page into an
// absolute URL. Relative candidates are resolved against page, the page URL
// ("https://example.com/news/story") or just its origin. Protocol-relative
// candidates get https. Inline data URLs are returned unchanged. Returns ""
// if the candidate cannot be resolved.
func ResolveImageURL(candidate, page string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return ""
	}

	lower := strings.ToLower(candidate)
	switch {
	case strings.HasPrefix(lower, "data:image/"):
		return candidate
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return validAbsolute(candidate)
	case strings.HasPrefix(candidate, "//"):
		return validAbsolute("https:" + candidate)
	}

	// Other schemes (javascript:, mailto:, blob:, ...) cannot be resolved.
	ref, err := url.Parse(candidate)
	if err != nil || ref.Scheme != "" {
		return ""
	}

	base := parseBase(page)
	if base == nil {
		return ""
	}
	return validAbsolute(base.ResolveReference(ref).String())
}

// PlaceholderImageURL returns a deterministic placeholder image seeded
// from domain.
func PlaceholderImageURL(domain string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(domain) + "/800/400"
}

// parseBase accepts an absolute page URL or a bare "example.com" and drops
// its query and fragment.
func parseBase(page string) *url.URL {
	page = strings.TrimSpace(page)
	if page == "" {
		return nil
	}
	if !strings.Contains(page, "://") {
		page = "https://" + page
	}
	u, err := url.Parse(page)
	if err != nil || u.Host == "" {
		return nil
	}
	u.RawQuery, u.Fragment = "", ""
	return u
}

func validAbsolute(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.String()
}
