package search

import (
	"sort"
	"strings"
)

// Scoring weights for the typeahead results view. Title relevance dominates
// snippet relevance; a title prefix match earns a bonus on top of the
// contains weight.
const (
	weightTitleContains = 10
	weightTitlePrefix   = 5
	weightTagContains   = 5
	weightSnippet       = 1
)

// Score rates an entry against a query. Zero means no match.
func Score(e Entry, query string) int {
	q := Normalize(query)
	if q == "" {
		return 0
	}

	score := 0
	title := Normalize(e.Title)
	if strings.Contains(title, q) {
		score += weightTitleContains
	}
	if strings.HasPrefix(title, q) {
		score += weightTitlePrefix
	}
	if strings.Contains(Normalize(strings.Join(e.Tags, " ")), q) {
		score += weightTagContains
	}
	if strings.Contains(Normalize(e.Snippet), q) {
		score += weightSnippet
	}
	return score
}

// Match is one scored result.
type Match struct {
	Entry Entry
	Score int
}

// TopMatches returns entries scoring above zero, best first. Ties keep
// index order (stable), so two equally relevant entries stay in document
// order. This ranked ordering is exclusive to the typeahead view; the
// in-page list never reorders by relevance.
func TopMatches(idx *Index, query string, limit int) []Match {
	if idx == nil {
		return nil
	}

	matches := make([]Match, 0, 16)
	for _, e := range idx.Entries() {
		if s := Score(e, query); s > 0 {
			matches = append(matches, Match{Entry: e, Score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
