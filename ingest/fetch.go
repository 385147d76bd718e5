package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/readlater"
)

// ChainLink is one way of retrieving HTML, bounded by its own timeout.
type ChainLink struct {
	Name    string
	Fetcher readlater.Fetcher
	Timeout time.Duration
}

// Ensure FetchChain implements readlater.Fetcher at compile time.
var _ readlater.Fetcher = (*FetchChain)(nil)

// FetchChain tries each link in order and returns the first page retrieved.
// Any failure, including an HTTP error status, moves on to the next link.
// When every link fails the last error is returned.
type FetchChain struct {
	links []ChainLink
}

// NewFetchChain creates a FetchChain. Links with a nil Fetcher are skipped,
// so optional sources can be passed unconditionally.
func NewFetchChain(links ...ChainLink) *FetchChain {
	c := &FetchChain{}
	for _, l := range links {
		if l.Fetcher != nil {
			c.links = append(c.links, l)
		}
	}
	return c
}

// Fetch retrieves url through the first link that succeeds.
func (c *FetchChain) Fetch(ctx context.Context, url string) (*readlater.FetchResult, error) {
	if len(c.links) == 0 {
		return nil, readlater.Errorf(readlater.EINVALID, "no fetch source configured")
	}

	var lastErr error
	for _, link := range c.links {
		if err := ctx.Err(); err != nil {
			return nil, readlater.WrapError(readlater.ENETWORK, err, "fetching %s", url)
		}

		result, err := c.fetch(ctx, link, url)
		if err == nil {
			return result, nil
		}
		lastErr = fmt.Errorf("%s: %w", link.Name, err)
	}
	return nil, lastErr
}

func (c *FetchChain) fetch(ctx context.Context, link ChainLink, url string) (*readlater.FetchResult, error) {
	if link.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, link.Timeout)
		defer cancel()
	}
	return link.Fetcher.Fetch(ctx, url)
}

// Ensure SharedFetcher implements readlater.Fetcher at compile time.
var _ readlater.Fetcher = (*SharedFetcher)(nil)

// SharedFetcher lets the strategies of one submission share a single fetch.
// Within a context returned by WithSharedFetches the first Fetch of a URL
// runs and later ones get the same result or error. Outside such a context
// every call is passed through.
type SharedFetcher struct {
	fetcher readlater.Fetcher
}

// NewSharedFetcher wraps f.
func NewSharedFetcher(f readlater.Fetcher) *SharedFetcher {
	return &SharedFetcher{fetcher: f}
}

type sharedFetchesKey struct{}

type sharedFetches struct {
	mu      sync.Mutex
	entries map[string]*sharedFetch
}

type sharedFetch struct {
	once   sync.Once
	result *readlater.FetchResult
	err    error
}

// WithSharedFetches returns a context in which SharedFetcher fetches every
// URL at most once.
func WithSharedFetches(ctx context.Context) context.Context {
	return context.WithValue(ctx, sharedFetchesKey{}, &sharedFetches{entries: make(map[string]*sharedFetch)})
}

// Fetch retrieves url, or returns the outcome of an earlier Fetch of url
// within the same submission.
func (f *SharedFetcher) Fetch(ctx context.Context, url string) (*readlater.FetchResult, error) {
	shared, ok := ctx.Value(sharedFetchesKey{}).(*sharedFetches)
	if !ok {
		return f.fetcher.Fetch(ctx, url)
	}

	shared.mu.Lock()
	entry, ok := shared.entries[url]
	if !ok {
		entry = &sharedFetch{}
		shared.entries[url] = entry
	}
	shared.mu.Unlock()

	entry.once.Do(func() {
		entry.result, entry.err = f.fetcher.Fetch(ctx, url)
	})
	if entry.err != nil || entry.result == nil {
		return nil, entry.err
	}
	result := *entry.result
	return &result, nil
}
