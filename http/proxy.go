package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/readlater"
)

// DefaultProxyTimeout is the default timeout for a fetch through the proxy.
const DefaultProxyTimeout = 45 * time.Second

// ProxyError is the body returned by the fetch proxy for failed fetches.
// Status carries the origin's HTTP status when the origin answered.
type ProxyError struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

// Ensure ProxyFetcher implements readlater.Fetcher at compile time.
var _ readlater.Fetcher = (*ProxyFetcher)(nil)

// ProxyFetcher retrieves HTML through a remote fetch proxy that exposes
// GET /fetch?url=<url> and answers with a JSON readlater.FetchResult.
type ProxyFetcher struct {
	baseURL string
	token   string
	timeout time.Duration
	client  *http.Client
}

// ProxyOption configures a ProxyFetcher.
type ProxyOption func(*ProxyFetcher)

// WithProxyTimeout sets the timeout for a single proxied fetch.
// Defaults to DefaultProxyTimeout (45s) if not specified.
func WithProxyTimeout(d time.Duration) ProxyOption {
	return func(p *ProxyFetcher) {
		p.timeout = d
	}
}

// WithProxyToken sends token as a bearer token with every request.
func WithProxyToken(token string) ProxyOption {
	return func(p *ProxyFetcher) {
		p.token = token
	}
}

// NewProxyFetcher creates a ProxyFetcher for the proxy at baseURL.
func NewProxyFetcher(baseURL string, opts ...ProxyOption) *ProxyFetcher {
	p := &ProxyFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultProxyTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = &http.Client{Timeout: p.timeout}
	return p
}

// Fetch asks the proxy to retrieve rawURL.
func (p *ProxyFetcher) Fetch(ctx context.Context, rawURL string) (*readlater.FetchResult, error) {
	endpoint := p.baseURL + "/fetch?" + url.Values{"url": {rawURL}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, readlater.WrapError(readlater.EINVALID, err, "building proxy request")
	}
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, networkError(err, rawURL)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, DefaultMaxBodySize*2)
	if err != nil {
		return nil, networkError(err, rawURL)
	}

	if resp.StatusCode != http.StatusOK {
		var perr ProxyError
		_ = json.Unmarshal(body, &perr)
		if perr.Status != 0 {
			return nil, readlater.HTTPErrorf(perr.Status, "HTTP %d for %s (via proxy)", perr.Status, rawURL)
		}
		msg := perr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, readlater.HTTPErrorf(resp.StatusCode, "fetch proxy: %s", msg)
	}

	var result readlater.FetchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, readlater.WrapError(readlater.EINTERNAL, err, "decoding proxy response")
	}
	if result.Status == 0 {
		result.Status = http.StatusOK
	}
	return &result, nil
}
