package mock

import (
	"context"

	"github.com/fwojciec/readlater"
)

var _ readlater.ImageGenerator = (*ImageGenerator)(nil)

// ImageGenerator is a mock implementation of readlater.ImageGenerator.
type ImageGenerator struct {
	GenerateImageFn func(ctx context.Context, prompt string) (string, error)
}

func (g *ImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return g.GenerateImageFn(ctx, prompt)
}
