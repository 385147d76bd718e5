package mock

import (
	"context"

	"github.com/fwojciec/readlater"
)

var _ readlater.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of readlater.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*readlater.FetchResult, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*readlater.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

var _ readlater.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of readlater.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
