package ingest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/readlater"
)

// GeneratedImageCaption is the caption of images produced by an
// ImageGenerator.
const GeneratedImageCaption = "AI-generated reference image"

// ImageResolver makes every image reference of a draft absolute and makes
// sure the article has a lead image.
type ImageResolver struct {
	// Generator is asked for an illustration when the draft has no images.
	// Optional.
	Generator readlater.ImageGenerator
}

// Resolve returns draft with absolute image URLs. Unresolvable and
// duplicate images are dropped. A draft without any image gets a generated
// one or, failing that, a placeholder seeded from the domain.
func (r *ImageResolver) Resolve(ctx context.Context, target readlater.Target, draft readlater.Draft) readlater.Draft {
	seen := make(map[string]bool)
	var images []readlater.ArticleImage
	for _, img := range draft.Images {
		img.URL = readlater.ResolveImageURL(img.URL, target.URL)
		if img.URL == "" || seen[img.URL] {
			continue
		}
		seen[img.URL] = true
		images = append(images, img)
	}
	draft.Images = images
	draft.ImageURL = readlater.ResolveImageURL(draft.ImageURL, target.URL)

	switch {
	case draft.ImageURL != "":
	case len(draft.Images) > 0:
		draft.ImageURL = draft.Images[0].URL
	default:
		if img, ok := r.generate(ctx, draft); ok {
			draft.Images = []readlater.ArticleImage{img}
			draft.ImageURL = img.URL
		} else {
			draft.ImageURL = readlater.PlaceholderImageURL(target.Domain)
		}
	}
	return draft
}

func (r *ImageResolver) generate(ctx context.Context, draft readlater.Draft) (readlater.ArticleImage, bool) {
	if r.Generator == nil || ctx.Err() != nil {
		return readlater.ArticleImage{}, false
	}
	url, err := r.Generator.GenerateImage(ctx, ImagePrompt(draft.Title, draft.Excerpt))
	if err != nil || readlater.ResolveImageURL(url, "") == "" {
		return readlater.ArticleImage{}, false
	}
	return readlater.ArticleImage{
		URL:     url,
		Alt:     "Generated image for: " + draft.Title,
		Caption: GeneratedImageCaption,
	}, true
}

// ImagePrompt builds an image generation prompt from an article title and
// the first 150 characters of its excerpt.
func ImagePrompt(title, excerpt string) string {
	prompt := fmt.Sprintf("Create a professional, relevant illustration for an article titled %q.", title)
	if excerpt = strings.TrimSpace(excerpt); excerpt != "" {
		if utf8.RuneCountInString(excerpt) > 150 {
			excerpt = string([]rune(excerpt)[:150])
		}
		prompt += " The article is about: " + excerpt
	}
	return prompt
}
