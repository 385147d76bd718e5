package gemini

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/readlater"
	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
	"google.golang.org/genai"
)

// DefaultImageTimeout bounds a single image generation call.
const DefaultImageTimeout = 60 * time.Second

// Ensure ImageGenerator implements readlater.ImageGenerator at compile time.
var _ readlater.ImageGenerator = (*ImageGenerator)(nil)

// ImageGenerator generates reference images with an Imagen model and
// returns them as inline data URLs.
type ImageGenerator struct {
	client  *Client
	model   string
	timeout time.Duration
}

// ImageOption configures an ImageGenerator.
type ImageOption func(*ImageGenerator)

// WithImageModel sets the image model.
func WithImageModel(model string) ImageOption {
	return func(g *ImageGenerator) {
		g.model = model
	}
}

// WithImageTimeout bounds a single generation call.
func WithImageTimeout(d time.Duration) ImageOption {
	return func(g *ImageGenerator) {
		g.timeout = d
	}
}

// NewImageGenerator creates a new ImageGenerator.
func NewImageGenerator(client *Client, opts ...ImageOption) *ImageGenerator {
	g := &ImageGenerator{
		client:  client,
		model:   DefaultImageModel,
		timeout: DefaultImageTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateImage generates one image for prompt.
func (g *ImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", readlater.Errorf(readlater.EINVALID, "image prompt required")
	}

	client, err := g.client.GenAI()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := client.Models.GenerateImages(ctx, g.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", readlater.WrapError(readlater.ENETWORK, err, "generating image")
		}
		return "", readlater.WrapError(readlater.EINTERNAL, err, "generating image")
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", readlater.Errorf(readlater.EINTERNAL, "image model returned no image")
	}

	img := resp.GeneratedImages[0].Image
	return DataURL(img.ImageBytes, img.MIMEType)
}

// DataURL encodes image bytes as a base64 data URL. When mimeType is empty
// it is detected from the bytes. Non-image content is rejected.
func DataURL(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", readlater.Errorf(readlater.EINTERNAL, "image is empty")
	}
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", readlater.Errorf(readlater.EINTERNAL, "generated content is %s, not an image", mimeType)
	}
	return dataurl.New(data, mimeType).String(), nil
}
