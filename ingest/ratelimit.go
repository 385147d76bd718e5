package ingest

import (
	"context"
	"strings"
	"sync"

	"github.com/fwojciec/readlater"
	"golang.org/x/time/rate"
)

var _ readlater.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter provides per-domain rate limiting for direct fetches.
// Each host gets its own token bucket with a burst of 1, so saving several
// articles from one site spaces the requests out while different sites
// proceed concurrently. "www." hosts share the bucket of the bare domain.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each domain.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(rps),
	}
}

// Wait blocks until a request to domain is allowed.
// Returns an error if ctx is done first.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	key := strings.TrimPrefix(strings.ToLower(domain), "www.")

	d.mu.Lock()
	limiter, ok := d.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(d.limit, 1)
		d.limiters[key] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
