// Package lookup matches user queries against catalog names.
package lookup

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"lexive/internal/logging"
)

// CompleteMatch returns the candidates matching query. An exact match is
// returned alone; otherwise every candidate that starts with or contains
// query is returned, sorted.
func CompleteMatch(query string, candidates []string) []string {
	var matches []string
	for _, c := range candidates {
		if c == query {
			return []string{c}
		}
		if strings.Contains(c, query) {
			matches = append(matches, c)
		}
	}
	sort.Strings(matches)
	return dedupe(matches)
}

// Result is the outcome of a catalog lookup.
type Result struct {
	Keys      []string
	Ambiguous bool // more matches than the configured limit
}

// Find runs CompleteMatch and flags results with more than maxDupes keys.
func Find(query string, candidates []string, maxDupes int) Result {
	keys := CompleteMatch(query, candidates)
	r := Result{Keys: keys, Ambiguous: len(keys) > maxDupes}
	logging.Get(logging.CategoryLookup).Sugar().Debugf(
		"Lookup %q: %d matches (ambiguous=%v)", query, len(keys), r.Ambiguous)
	return r
}

// maxEditDistance bounds typo suggestions for short queries.
const maxEditDistance = 2

// Suggest returns up to n candidates close to query, best first. Candidates
// holding the query's letters in order rank first; otherwise the closest by
// edit distance are offered.
func Suggest(query string, candidates []string, n int) []string {
	if query == "" || n <= 0 {
		return nil
	}
	ranks := fuzzy.RankFindFold(query, candidates)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})

	out := make([]string, 0, n)
	for _, r := range ranks {
		if len(out) == n {
			return out
		}
		out = append(out, r.Target)
	}
	if len(out) > 0 {
		return out
	}

	limit := maxEditDistance
	if l := len(query) / 3; l > limit {
		limit = l
	}
	type scored struct {
		target string
		dist   int
	}
	var near []scored
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(query, c); d <= limit {
			near = append(near, scored{c, d})
		}
	}
	sort.Slice(near, func(i, j int) bool {
		if near[i].dist != near[j].dist {
			return near[i].dist < near[j].dist
		}
		return near[i].target < near[j].target
	})
	for _, s := range near {
		if len(out) == n {
			break
		}
		out = append(out, s.target)
	}
	return out
}

// SplitMention separates a chat mention ("<@!id>") from a query and drops
// anything after a stray "@" or "#".
func SplitMention(s string) (query, mention string) {
	if i := strings.Index(s, "<@!"); i >= 0 && strings.Contains(s[i:], ">") {
		s, mention = s[:i], s[i:]
	}
	if i := strings.IndexAny(s, "@#"); i >= 0 {
		s = s[:i]
	}
	return s, mention
}

func dedupe(sorted []string) []string {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, s := range sorted[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
