// Package visibility computes which cards a filter state leaves visible.
// Pure functions: descriptors and state in, ordered id list out. The DOM is
// someone else's problem.
package visibility

import (
	"strings"

	"gazette/internal/search"
	"gazette/internal/state"
)

// suppressPinnedOnSearch controls whether a non-empty search query alone
// hides the pinned highlight. Only an active tag suppresses it; language
// and search leave the highlight in place.
const suppressPinnedOnSearch = false

// Item describes one card on the page, mirroring the data attributes the
// static exporter writes. Created once at render time, immutable after.
type Item struct {
	ID     string
	Title  string
	Tags   []string
	Lang   state.Language
	Pinned bool
}

// Disposition is what happens to the pinned item under the current state.
type Disposition int

const (
	// PinnedNone means the page has no pinned item.
	PinnedNone Disposition = iota
	// PinnedHighlight shows the pinned item in its highlight slot, outside
	// normal pagination.
	PinnedHighlight
	// PinnedSuppressed hides the pinned item entirely; it does not come
	// back as a regular card either, to avoid rendering it twice.
	PinnedSuppressed
)

// Result is the derived visible set. Visible preserves document order of
// the regular items and never includes the pinned item.
type Result struct {
	Visible []string
	Pinned  Disposition
}

// Compute derives the visible set from the full descriptor list, the filter
// state, and the index snapshot (nil while still loading, which degrades
// search to attribute-only matching).
func Compute(items []Item, s state.FilterState, idx *search.Index) Result {
	res := Result{Visible: make([]string, 0, len(items)), Pinned: PinnedNone}

	for _, item := range items {
		if item.Pinned {
			if res.Pinned == PinnedNone {
				res.Pinned = pinnedDisposition(s)
			}
			continue
		}
		if matchesSearch(item, s.Query, idx) &&
			matchesLanguage(item, s.Lang) &&
			matchesTag(item, s.Tag) {
			res.Visible = append(res.Visible, item.ID)
		}
	}

	return res
}

func pinnedDisposition(s state.FilterState) Disposition {
	if s.Tag != "" {
		return PinnedSuppressed
	}
	if suppressPinnedOnSearch && strings.TrimSpace(s.Query) != "" {
		return PinnedSuppressed
	}
	return PinnedHighlight
}

// matchesSearch is substring-based, not tokenized. The query matches when
// it appears in the title, the joined tags, or (when the index has an entry
// for the item) the snippet. A missing index or a missing entry degrades to
// the attribute-only fields rather than excluding the item.
func matchesSearch(item Item, query string, idx *search.Index) bool {
	q := search.Normalize(query)
	if q == "" {
		return true
	}

	if strings.Contains(search.Normalize(item.Title), q) {
		return true
	}
	if strings.Contains(search.Normalize(strings.Join(item.Tags, " ")), q) {
		return true
	}
	if idx != nil {
		if entry, ok := idx.Lookup(item.ID); ok {
			return strings.Contains(search.Normalize(entry.Snippet), q)
		}
	}
	return false
}

func matchesLanguage(item Item, lang state.Language) bool {
	if lang == state.LangAll {
		return true
	}
	return state.FoldLanguage(string(item.Lang)) == lang
}

func matchesTag(item Item, tag string) bool {
	if tag == "" {
		return true
	}
	want := search.Normalize(tag)
	for _, t := range item.Tags {
		if search.Normalize(t) == want {
			return true
		}
	}
	return false
}
