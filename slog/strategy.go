package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/readlater"
)

// Ensure LoggingStrategy implements readlater.Strategy.
var _ readlater.Strategy = (*LoggingStrategy)(nil)

// LoggingStrategy wraps an extraction Strategy with logging.
type LoggingStrategy struct {
	next   readlater.Strategy
	logger *slog.Logger
}

// NewLoggingStrategy creates a new LoggingStrategy.
func NewLoggingStrategy(next readlater.Strategy, logger *slog.Logger) *LoggingStrategy {
	return &LoggingStrategy{next: next, logger: logger}
}

// Name delegates to the wrapped strategy.
func (s *LoggingStrategy) Name() string {
	return s.next.Name()
}

// Attempt logs the outcome of the wrapped strategy.
func (s *LoggingStrategy) Attempt(ctx context.Context, target readlater.Target) readlater.Attempt {
	begin := time.Now()
	a := s.next.Attempt(ctx, target)
	if a.OK() {
		d := a.Draft()
		s.logger.Info("extraction",
			"strategy", s.next.Name(),
			"url", target.URL,
			"outcome", "ok",
			"title", d.Title,
			"words", readlater.WordCount(d.Content),
			"images", len(d.Images),
			"duration", time.Since(begin),
		)
		return a
	}
	s.logger.Warn("extraction",
		"strategy", s.next.Name(),
		"url", target.URL,
		"outcome", "failed",
		"code", a.Code(),
		"duration", time.Since(begin),
		"err", a.Err(),
	)
	return a
}
