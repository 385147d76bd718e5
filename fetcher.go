package readlater

import "context"

// FetchResult holds the raw HTML and response metadata of a fetch.
type FetchResult struct {
	HTML        string `json:"html"`
	Status      int    `json:"status"`
	ContentType string `json:"contentType,omitempty"`
}

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch returns the page at url.
	// Returns ENETWORK for transport failures, timeouts and cancellation,
	// and EHTTP with the response status for non-2xx responses.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
