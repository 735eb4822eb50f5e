// Package search provides the read-only search index the reader runtime
// loads once per page, plus the tiered scoring used by the typeahead
// results view.
package search

import (
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/cases"

	"gazette/internal/state"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry is one record of the search index, a superset of the item
// descriptor carried on the page markup. Snippet exists only for matching
// and scoring, never for display attributes.
type Entry struct {
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Tags        []string       `json:"tags"`
	Lang        state.Language `json:"lang"`
	Snippet     string         `json:"snippet"`
	PublishedAt time.Time      `json:"published_at"`
}

// Index is the loaded search index. Read-only after construction.
type Index struct {
	entries []Entry
	bySlug  map[string]int
}

// NewIndex builds an index over entries, preserving their order.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		entries: entries,
		bySlug:  make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		idx.bySlug[e.Slug] = i
	}
	return idx
}

// ParseIndex decodes the search-index JSON payload.
func ParseIndex(data []byte) (*Index, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return NewIndex(entries), nil
}

// Entries returns the entries in index order.
func (idx *Index) Entries() []Entry {
	return idx.entries
}

// Lookup returns the entry for a slug, if present.
func (idx *Index) Lookup(slug string) (Entry, bool) {
	i, ok := idx.bySlug[slug]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[i], true
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

var folder = cases.Fold()

// Normalize trims and case-folds a string for comparison. All substring
// matching in the runtime goes through this so the list view and the
// typeahead agree on what "contains" means.
func Normalize(s string) string {
	return folder.String(strings.TrimSpace(s))
}
