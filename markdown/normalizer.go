// Package markdown rewrites third-party HTML into the canonical article body
// format: a restricted Markdown dialect of headings, paragraphs, block
// quotes, flat lists, emphasis, links and code.
package markdown

import "github.com/fwojciec/readlater"

// Ensure Normalizer implements readlater.Normalizer at compile time.
var _ readlater.Normalizer = (*Normalizer)(nil)

// maxPasses bounds how often the rule list is re-applied while looking for
// a fixed point. Real documents settle after the second pass.
const maxPasses = 4

// Normalizer converts HTML to Markdown by applying an ordered list of
// rewrite rules.
type Normalizer struct {
	rules []Rule
}

// NewNormalizer creates a Normalizer using the default rule list.
func NewNormalizer() *Normalizer {
	return &Normalizer{rules: Rules()}
}

// Normalize converts html into Markdown. It never fails; malformed input
// degrades to plain text. The rules are re-applied until the output stops
// changing, so Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(html string) string {
	out := n.pass(html)
	for range maxPasses - 1 {
		next := n.pass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func (n *Normalizer) pass(s string) string {
	for _, r := range n.rules {
		s = r.Apply(s)
	}
	return s
}
