package content

import (
	"strings"

	"golang.org/x/text/cases"
)

// casefoldStrip are removed from names when they are stored and from
// queries, so that punctuation and spacing are optional when asking.
const casefoldStrip = " ',:-!()[]"

const (
	newlineMarker = "#"
	prefixMarker  = "!"
	quotePrefix   = ">>>"
)

var stripper = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(casefoldStrip))
	for _, r := range casefoldStrip {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}()

// Casefold normalizes a name for matching. A Caser is stateful, so each
// call builds its own.
func Casefold(s string) string {
	return stripper.Replace(cases.Fold().String(s))
}

// ExpandOptions control Expand.
type ExpandOptions struct {
	Flavour bool   // paragraphs get a blank line between them
	Prefix  string // when set, replaces the "!" marker
}

// Expand turns the CSV markup into display text: "#" becomes a line break
// and, if requested, "!" becomes the configured prefix.
func Expand(s string, opts ExpandOptions) string {
	s = strings.TrimPrefix(s, quotePrefix)
	nl := "\n"
	if opts.Flavour {
		nl = "\n\n"
	}
	s = strings.ReplaceAll(s, newlineMarker, nl)
	if opts.Prefix != "" {
		s = strings.ReplaceAll(s, prefixMarker, opts.Prefix)
	}
	return s
}
