// Package ingest turns submitted URLs into saved articles. It composes the
// fetchers, extraction strategies, image generator and record store
// implemented by the other packages:
//
//	URL -> Classify -> video record
//	    -> Cascade (strategies) -> ImageResolver -> Assembler -> record store
package ingest

import (
	"context"
	"strings"

	"github.com/fwojciec/readlater"
)

// Pipeline adds articles.
type Pipeline struct {
	Extractor *Cascade
	Images    *ImageResolver
	Assembler *Assembler
}

// AddArticle extracts the page at rawURL and saves it for owner.
// Returns EINVALID for anything but an absolute http(s) URL, EEXTRACTION
// when every strategy failed and EPERSISTENCE when saving failed. Nothing
// is saved unless extraction succeeded.
func (p *Pipeline) AddArticle(ctx context.Context, owner, rawURL string) (*readlater.Article, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, readlater.Errorf(readlater.EINVALID, "owner required")
	}
	target, err := readlater.NewTarget(rawURL)
	if err != nil {
		return nil, err
	}

	if c := readlater.Classify(target.URL); c.Kind == readlater.KindVideo {
		return p.Assembler.AssembleVideo(ctx, owner, target, c.VideoID)
	}

	// Strategies fetching through a SharedFetcher download the page once.
	draft, err := p.Extractor.Extract(WithSharedFetches(ctx), target)
	if err != nil {
		return nil, err
	}
	if p.Images != nil {
		draft = p.Images.Resolve(ctx, target, draft)
	}
	return p.Assembler.Assemble(ctx, owner, target, draft)
}
