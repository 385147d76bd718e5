package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/readlater"
)

// Ensure LoggingImageGenerator implements readlater.ImageGenerator.
var _ readlater.ImageGenerator = (*LoggingImageGenerator)(nil)

// LoggingImageGenerator wraps an ImageGenerator with logging. Generated
// images are data URLs, so only their size is logged.
type LoggingImageGenerator struct {
	next   readlater.ImageGenerator
	logger *slog.Logger
}

// NewLoggingImageGenerator creates a new LoggingImageGenerator.
func NewLoggingImageGenerator(next readlater.ImageGenerator, logger *slog.Logger) *LoggingImageGenerator {
	return &LoggingImageGenerator{next: next, logger: logger}
}

// GenerateImage logs the generation and delegates to the wrapped generator.
func (g *LoggingImageGenerator) GenerateImage(ctx context.Context, prompt string) (url string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("image generation",
			"prompt", prompt,
			"bytes", len(url),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.GenerateImage(ctx, prompt)
}
