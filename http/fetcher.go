// Package http provides net/http implementations of readlater.Fetcher: a
// direct fetcher that presents itself as a desktop browser, and a client for
// the remote fetch proxy.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/readlater"
)

// DefaultFetchTimeout is the default timeout for direct requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxBodySize is the default limit on response body size.
const DefaultMaxBodySize = 16 << 20

// UserAgent is sent with every direct request.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// browserHeaders mimic a top-level navigation in a desktop browser.
// Accept-Encoding is left to the transport so gzip is decoded transparently.
var browserHeaders = map[string]string{
	"User-Agent":                UserAgent,
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Cache-Control":             "max-age=0",
}

// Ensure Fetcher implements readlater.Fetcher at compile time.
var _ readlater.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML directly from origin servers. It does not execute
// JavaScript.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxBodySize  int64
	browserTLS   bool
	blockPrivate bool
	limiter      readlater.DomainLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for a single request, including reading the
// body. Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
// Zero or negative disables the limit.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithBrowserTLS makes HTTPS requests with a browser TLS fingerprint.
func WithBrowserTLS() Option {
	return func(f *Fetcher) {
		f.browserTLS = true
	}
}

// WithPrivateNetworkBlocked refuses connections to loopback, link-local
// and private addresses.
func WithPrivateNetworkBlocked() Option {
	return func(f *Fetcher) {
		f.blockPrivate = true
	}
}

// WithLimiter rate limits requests per domain.
func WithLimiter(l readlater.DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a new direct Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	dialer := &net.Dialer{Timeout: f.timeout}
	dial := dialer.DialContext
	if f.blockPrivate {
		dial = publicDialContext(dialer)
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dial,
		TLSHandshakeTimeout: f.timeout,
	}
	if f.browserTLS {
		transport = newBrowserTransport(dial)
	}

	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*readlater.FetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, readlater.Errorf(readlater.EINVALID, "invalid URL %q", rawURL)
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
			return nil, readlater.WrapError(readlater.ENETWORK, err, "waiting to fetch %s", rawURL)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, readlater.WrapError(readlater.EINVALID, err, "building request")
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, networkError(err, rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readlater.HTTPErrorf(resp.StatusCode, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := readLimited(resp.Body, f.maxBodySize)
	if err != nil {
		return nil, networkError(err, rawURL)
	}

	return &readlater.FetchResult{
		HTML:        string(body),
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// networkError classifies a transport failure as ENETWORK. The cause stays
// reachable, so errors.Is(err, context.DeadlineExceeded) keeps working.
func networkError(err error, rawURL string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return readlater.WrapError(readlater.ENETWORK, err, "fetching %s aborted", rawURL)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return readlater.WrapError(readlater.ENETWORK, err, "fetching %s timed out", rawURL)
	}
	return readlater.WrapError(readlater.ENETWORK, err, "fetching %s", rawURL)
}

// readLimited reads up to limit bytes from r. Bodies larger than limit are
// rejected. A limit of 0 or less reads without limit.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}
