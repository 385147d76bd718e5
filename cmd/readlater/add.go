package main

import (
	"fmt"
	"sync"

	"github.com/fwojciec/readlater"
	"golang.org/x/sync/errgroup"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	if deps.Pipeline == nil {
		fmt.Fprintln(deps.Stderr, "error: ingestion pipeline not configured")
		return readlater.Errorf(readlater.EINTERNAL, "ingestion pipeline not configured")
	}

	var (
		mu       sync.Mutex
		failed   int
		firstErr error
	)

	g, ctx := errgroup.WithContext(deps.Ctx)
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}

	for _, rawURL := range c.URLs {
		g.Go(func() error {
			article, err := deps.Pipeline.AddArticle(ctx, deps.Owner, rawURL)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if firstErr == nil {
					firstErr = err
				}
				fmt.Fprintf(deps.Stderr, "skip %s: %v\n", rawURL, err)
				return nil
			}
			fmt.Fprintf(deps.Stdout, "Saved %q (%s, %d min)\n", article.Title, article.ID, article.ReadingTime)
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		return readlater.WrapError(readlater.ErrorCode(firstErr), firstErr, "%d of %d URLs failed", failed, len(c.URLs))
	}
	return nil
}
