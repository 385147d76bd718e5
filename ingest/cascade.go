package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/readlater"
)

// Cascade tries extraction strategies in order until one produces a draft
// with content.
type Cascade struct {
	strategies []readlater.Strategy
	normalizer readlater.Normalizer
}

// NewCascade creates a Cascade. The normalizer decides whether a draft's
// content is empty once markup is removed.
func NewCascade(normalizer readlater.Normalizer, strategies ...readlater.Strategy) *Cascade {
	return &Cascade{
		strategies: strategies,
		normalizer: normalizer,
	}
}

// Strategies returns the strategy names in the order they are tried.
func (c *Cascade) Strategies() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name()
	}
	return names
}

// Extract returns the draft of the first strategy that succeeds.
// Returns EEXTRACTION, joining every strategy's failure, when none does.
// Cancellation of ctx stops the cascade with ENETWORK.
func (c *Cascade) Extract(ctx context.Context, target readlater.Target) (readlater.Draft, error) {
	var errs []error
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return readlater.Draft{}, readlater.WrapError(readlater.ENETWORK, errors.Join(append(errs, err)...), "extraction of %s canceled", target.URL)
		}

		a := s.Attempt(ctx, target)
		if !a.OK() {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), a.Err()))
			continue
		}

		draft := a.Draft()
		if c.empty(draft.Content) {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), readlater.Errorf(readlater.EEXTRACTION, "no extractable text")))
			continue
		}
		return draft, nil
	}

	if len(errs) == 0 {
		return readlater.Draft{}, readlater.Errorf(readlater.EEXTRACTION, "no extraction strategy configured")
	}
	return readlater.Draft{}, &readlater.Error{
		Code:    readlater.EEXTRACTION,
		Message: fmt.Sprintf("could not extract %s", target.URL),
		Err:     errors.Join(errs...),
	}
}

func (c *Cascade) empty(content string) bool {
	if c.normalizer != nil {
		content = c.normalizer.Normalize(content)
	}
	return strings.TrimSpace(content) == ""
}
