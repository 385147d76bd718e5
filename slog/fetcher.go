// Package slog provides logging decorators for pipeline components.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/readlater"
)

// Ensure LoggingFetcher implements readlater.Fetcher.
var _ readlater.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   readlater.Fetcher
	name   string
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher. name identifies the
// wrapped fetcher in log records.
func NewLoggingFetcher(next readlater.Fetcher, name string, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, name: name, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (result *readlater.FetchResult, err error) {
	defer func(begin time.Time) {
		var bytes, status int
		if result != nil {
			bytes, status = len(result.HTML), result.Status
		}
		if err != nil {
			status = readlater.ErrorStatus(err)
		}
		f.logger.Info("fetch",
			"fetcher", f.name,
			"url", url,
			"status", status,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
