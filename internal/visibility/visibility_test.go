package visibility

import (
	"reflect"
	"testing"

	"gazette/internal/search"
	"gazette/internal/state"
)

func testItems() []Item {
	return []Item{
		{ID: "front-page", Title: "Front page story", Tags: []string{"bash", "editorial"}, Lang: state.LangEnglish, Pinned: true},
		{ID: "rust-ownership", Title: "Rust ownership", Tags: []string{"memory"}, Lang: state.LangEnglish},
		{ID: "tagged-rust", Title: "Borrow checker diaries", Tags: []string{"rust"}, Lang: state.LangEnglish},
		{ID: "snippet-rust", Title: "Systems languages compared", Tags: []string{"languages"}, Lang: state.LangEnglish},
		{ID: "bash-tricks", Title: "Shell one-liners", Tags: []string{"bash"}, Lang: state.LangPortuguese},
	}
}

func testIndex() *search.Index {
	return search.NewIndex([]search.Entry{
		{Slug: "rust-ownership", Title: "Rust ownership", Snippet: "moves, borrows, lifetimes"},
		{Slug: "tagged-rust", Title: "Borrow checker diaries", Snippet: "a week with the compiler"},
		{Slug: "snippet-rust", Title: "Systems languages compared", Snippet: "c, zig and rust side by side"},
		{Slug: "bash-tricks", Title: "Shell one-liners", Snippet: "pipes and loops"},
	})
}

func TestComputeNoFilters(t *testing.T) {
	res := Compute(testItems(), state.Default(), testIndex())

	want := []string{"rust-ownership", "tagged-rust", "snippet-rust", "bash-tricks"}
	if !reflect.DeepEqual(res.Visible, want) {
		t.Errorf("visible = %v, want %v", res.Visible, want)
	}
	if res.Pinned != PinnedHighlight {
		t.Errorf("pinned = %v, want highlight with no active filters", res.Pinned)
	}
}

// Search matching is tiered: title and tags always, snippet only when the
// index is available.
func TestComputeSearchWithAndWithoutIndex(t *testing.T) {
	items := testItems()
	st := state.FilterState{Query: "rust", Lang: state.LangAll, Page: 1}

	// With the index loaded, the snippet-only item matches too.
	res := Compute(items, st, testIndex())
	want := []string{"rust-ownership", "tagged-rust", "snippet-rust"}
	if !reflect.DeepEqual(res.Visible, want) {
		t.Errorf("with index: visible = %v, want %v", res.Visible, want)
	}

	// Degraded matching: index not yet loaded, attributes only.
	res = Compute(items, st, nil)
	want = []string{"rust-ownership", "tagged-rust"}
	if !reflect.DeepEqual(res.Visible, want) {
		t.Errorf("degraded: visible = %v, want %v", res.Visible, want)
	}
}

// An id absent from the index falls back to attribute matching instead of
// being hidden unconditionally.
func TestComputeIndexMissingEntry(t *testing.T) {
	items := []Item{
		{ID: "only-on-page", Title: "Rust without an index entry", Lang: state.LangEnglish},
	}
	res := Compute(items, state.FilterState{Query: "rust", Lang: state.LangAll, Page: 1}, search.NewIndex(nil))
	if len(res.Visible) != 1 {
		t.Errorf("item missing from index should still match by title, got %v", res.Visible)
	}
}

func TestComputePinnedSuppression(t *testing.T) {
	items := testItems()

	// An active tag suppresses the highlight, and the pinned item does not
	// come back as a regular card even though it carries the bash tag.
	res := Compute(items, state.FilterState{Lang: state.LangAll, Tag: "bash", Page: 1}, testIndex())
	if res.Pinned != PinnedSuppressed {
		t.Errorf("pinned = %v, want suppressed under tag filter", res.Pinned)
	}
	for _, id := range res.Visible {
		if id == "front-page" {
			t.Error("suppressed pinned item must not reappear as a regular card")
		}
	}
	if !reflect.DeepEqual(res.Visible, []string{"bash-tricks"}) {
		t.Errorf("visible = %v, want [bash-tricks]", res.Visible)
	}

	// Clearing the tag restores the highlight.
	res = Compute(items, state.Default(), testIndex())
	if res.Pinned != PinnedHighlight {
		t.Errorf("pinned = %v, want highlight after clearing tag", res.Pinned)
	}

	// Language and search alone leave the highlight in place.
	res = Compute(items, state.FilterState{Query: "rust", Lang: state.LangPortuguese, Page: 1}, testIndex())
	if res.Pinned != PinnedHighlight {
		t.Errorf("pinned = %v, want highlight under language/search only", res.Pinned)
	}
}

func TestComputeNoPinnedItem(t *testing.T) {
	items := testItems()[1:]
	res := Compute(items, state.Default(), testIndex())
	if res.Pinned != PinnedNone {
		t.Errorf("pinned = %v, want none when no item is pinned", res.Pinned)
	}
}

func TestMatchesLanguageFolding(t *testing.T) {
	items := []Item{
		{ID: "br", Title: "Crônica", Lang: "pt-br"},
		{ID: "pt", Title: "Crónica", Lang: "pt"},
		{ID: "en", Title: "Column", Lang: "en"},
	}

	res := Compute(items, state.FilterState{Lang: state.LangPortuguese, Page: 1}, nil)
	want := []string{"br", "pt"}
	if !reflect.DeepEqual(res.Visible, want) {
		t.Errorf("pt filter should fold pt-br, got %v", res.Visible)
	}

	res = Compute(items, state.Default(), nil)
	if len(res.Visible) != 3 {
		t.Errorf("all should match everything, got %v", res.Visible)
	}
}

func TestMatchesTagCaseInsensitive(t *testing.T) {
	items := []Item{
		{ID: "a", Title: "A", Tags: []string{"Bash"}},
		{ID: "b", Title: "B", Tags: []string{"zsh"}},
	}
	res := Compute(items, state.FilterState{Lang: state.LangAll, Tag: "bash", Page: 1}, nil)
	if !reflect.DeepEqual(res.Visible, []string{"a"}) {
		t.Errorf("tag match should be case-normalized, got %v", res.Visible)
	}
}

// The visible set preserves document order regardless of how well each item
// matches; relevance ordering belongs to the typeahead alone.
func TestComputeOrderIsDocumentOrder(t *testing.T) {
	items := []Item{
		{ID: "weak", Title: "Mentions rust once", Lang: state.LangEnglish},
		{ID: "strong", Title: "Rust rust rust", Tags: []string{"rust"}, Lang: state.LangEnglish},
	}
	res := Compute(items, state.FilterState{Query: "rust", Lang: state.LangAll, Page: 1}, nil)
	if !reflect.DeepEqual(res.Visible, []string{"weak", "strong"}) {
		t.Errorf("expected document order, got %v", res.Visible)
	}
}
