package controller

import (
	"fmt"
	"net/url"
	"reflect"
	"testing"

	"gazette/internal/search"
	"gazette/internal/state"
	"gazette/internal/visibility"
)

// --- test doubles ---

type memStorage struct {
	m map[string]string
}

func newMemStorage() *memStorage { return &memStorage{m: make(map[string]string)} }

func (s *memStorage) Get(key string) (string, bool) {
	v, ok := s.m[key]
	return v, ok
}
func (s *memStorage) Set(key, value string) { s.m[key] = value }
func (s *memStorage) Delete(key string)     { delete(s.m, key) }

type historyEntry struct {
	op    string // "push" or "replace"
	query string
}

type fakeHistory struct {
	entries []historyEntry
}

func (h *fakeHistory) Push(query string) { h.entries = append(h.entries, historyEntry{"push", query}) }
func (h *fakeHistory) Replace(query string) {
	h.entries = append(h.entries, historyEntry{"replace", query})
}

func (h *fakeHistory) last() historyEntry {
	if len(h.entries) == 0 {
		return historyEntry{}
	}
	return h.entries[len(h.entries)-1]
}

type fakeNavigator struct {
	opened []string
}

func (n *fakeNavigator) Open(target string) { n.opened = append(n.opened, target) }

type fakeIndex struct {
	idx *search.Index
}

func (f *fakeIndex) Snapshot() (*search.Index, bool) {
	if f.idx == nil {
		return nil, false
	}
	return f.idx, true
}

type captureRenderer struct {
	instructions []Instruction
}

func (r *captureRenderer) Apply(in Instruction) { r.instructions = append(r.instructions, in) }

func (r *captureRenderer) last() Instruction {
	if len(r.instructions) == 0 {
		return Instruction{}
	}
	return r.instructions[len(r.instructions)-1]
}

// --- fixtures ---

func regularItems(n int) []visibility.Item {
	items := make([]visibility.Item, n)
	for i := range items {
		items[i] = visibility.Item{
			ID:    fmt.Sprintf("item-%02d", i+1),
			Title: fmt.Sprintf("Story %d", i+1),
			Tags:  []string{"news"},
			Lang:  state.LangEnglish,
		}
	}
	return items
}

type fixture struct {
	storage  *memStorage
	history  *fakeHistory
	nav      *fakeNavigator
	renderer *captureRenderer
	cfg      Config
}

func newFixture(items []visibility.Item, idx *search.Index) *fixture {
	f := &fixture{
		storage:  newMemStorage(),
		history:  &fakeHistory{},
		nav:      &fakeNavigator{},
		renderer: &captureRenderer{},
	}
	f.cfg = Config{
		Items:     items,
		Storage:   f.storage,
		History:   f.history,
		Navigator: f.nav,
		Index:     &fakeIndex{idx: idx},
		Renderer:  f.renderer,
		ListPath:  "/",
	}
	return f
}

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("parse query %q: %v", raw, err)
	}
	return values
}

// --- tests ---

// Scenario: 25 regular items, no filters. Three pages; a request for page 5
// clamps to 3.
func TestPaginationClamping(t *testing.T) {
	f := newFixture(regularItems(25), nil)
	c := NewListPage(f.cfg, url.Values{})

	in := f.renderer.last()
	if in.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 25 items, got %d", in.TotalPages)
	}
	if in.Page != 1 || len(in.VisibleIDs) != 10 {
		t.Errorf("initial page: page=%d visible=%d", in.Page, len(in.VisibleIDs))
	}

	c.GoToPage(5)
	in = f.renderer.last()
	if in.Page != 3 {
		t.Errorf("page 5 should clamp to 3, got %d", in.Page)
	}
	if len(in.VisibleIDs) != 5 {
		t.Errorf("last page should hold 5 items, got %d", len(in.VisibleIDs))
	}
	if c.State().Page != 3 {
		t.Errorf("canonical state page = %d, want 3", c.State().Page)
	}
}

// Re-running the pipeline with an unchanged state emits an identical
// instruction.
func TestPipelineIdempotence(t *testing.T) {
	f := newFixture(regularItems(25), nil)
	c := NewListPage(f.cfg, mustQuery(t, "q=story&page=2"))

	first := f.renderer.last()
	c.Refresh()
	second := f.renderer.last()

	// PageChanged is presentation-only; the derived state must be identical.
	first.PageChanged = false
	second.PageChanged = false
	if !reflect.DeepEqual(first, second) {
		t.Errorf("pipeline not idempotent:\n first: %+v\nsecond: %+v", first, second)
	}
}

// Toggling the same tag twice returns the state and the visible set to the
// pre-tag contents.
func TestTagToggle(t *testing.T) {
	items := regularItems(5)
	items[2].Tags = []string{"rust"}
	f := newFixture(items, nil)
	c := NewListPage(f.cfg, url.Values{})

	before := f.renderer.last()

	c.SetTag("rust")
	mid := f.renderer.last()
	if c.State().Tag != "rust" {
		t.Fatalf("tag = %q, want rust", c.State().Tag)
	}
	if !reflect.DeepEqual(mid.VisibleIDs, []string{"item-03"}) {
		t.Errorf("tag filter visible = %v", mid.VisibleIDs)
	}

	c.SetTag("rust")
	after := f.renderer.last()
	if c.State().Tag != "" {
		t.Errorf("reselecting the active tag should clear it, got %q", c.State().Tag)
	}
	if !reflect.DeepEqual(after.VisibleIDs, before.VisibleIDs) {
		t.Errorf("visible set should return to pre-tag contents: %v vs %v", after.VisibleIDs, before.VisibleIDs)
	}
}

// Scenario: load with ?tag=go&page=2 over a set where the tag leaves only 5
// matches. Page clamps to 1 and the URL is rewritten to omit page while
// keeping the tag.
func TestLoadClampRewritesURL(t *testing.T) {
	items := regularItems(30)
	for i := 0; i < 5; i++ {
		items[i].Tags = []string{"go"}
	}
	f := newFixture(items, nil)
	NewListPage(f.cfg, mustQuery(t, "tag=go&page=2"))

	in := f.renderer.last()
	if in.Page != 1 || in.TotalPages != 1 {
		t.Errorf("expected clamp to single page, got page=%d total=%d", in.Page, in.TotalPages)
	}

	last := f.history.last()
	if last.op != "replace" {
		t.Errorf("load-time normalization must replace, not push, got %q", last.op)
	}
	if last.query != "tag=go" {
		t.Errorf("URL after clamp = %q, want tag=go", last.query)
	}
}

// A persisted page within range is honored at load time rather than reset.
func TestLoadHonorsPersistedPage(t *testing.T) {
	f := newFixture(regularItems(25), nil)
	NewListPage(f.cfg, mustQuery(t, "page=2"))

	in := f.renderer.last()
	if in.Page != 2 {
		t.Errorf("in-range persisted page should be honored, got %d", in.Page)
	}
	if in.VisibleIDs[0] != "item-11" {
		t.Errorf("page 2 should start at item-11, got %s", in.VisibleIDs[0])
	}
}

// Filter mutations reset to page 1 and replace history; deliberate page
// turns push so the back button undoes pagination first.
func TestHistoryDiscipline(t *testing.T) {
	f := newFixture(regularItems(25), nil)
	c := NewListPage(f.cfg, url.Values{})

	c.NextPage()
	if last := f.history.last(); last.op != "push" || last.query != "page=2" {
		t.Errorf("page turn should push page=2, got %+v", last)
	}

	c.SetQuery("story")
	last := f.history.last()
	if last.op != "replace" {
		t.Errorf("filter change should replace, got %q", last.op)
	}
	if c.State().Page != 1 {
		t.Errorf("filter change should reset to page 1, got %d", c.State().Page)
	}

	c.SetLanguage(state.LangPortuguese)
	if last := f.history.last(); last.op != "replace" {
		t.Errorf("language change should replace, got %q", last.op)
	}
}

func TestBoundaryPageTurnsAreNoOps(t *testing.T) {
	f := newFixture(regularItems(5), nil)
	c := NewListPage(f.cfg, url.Values{})
	rendered := len(f.renderer.instructions)
	pushed := len(f.history.entries)

	c.PrevPage()
	c.NextPage() // single page: both boundaries
	if len(f.renderer.instructions) != rendered {
		t.Error("boundary page turns must not re-render")
	}
	if len(f.history.entries) != pushed {
		t.Error("boundary page turns must not touch history")
	}

	in := f.renderer.last()
	if in.Page != 1 || in.TotalPages != 1 {
		t.Errorf("unexpected pagination %+v", in)
	}
}

// Scenario: list page filtered to lang=pt, navigate to a detail page and
// back. The filter survives the round trip through referrer and storage.
func TestDetailPageRoundTrip(t *testing.T) {
	const origin = "https://news.example.org"

	shared := newMemStorage()

	// List page with an active language filter.
	listFix := newFixture(regularItems(3), nil)
	listFix.cfg.Storage = shared
	NewListPage(listFix.cfg, mustQuery(t, "lang=pt"))

	// Detail page reached by following a link; the referrer carries the
	// list page's query string.
	detailFix := newFixture(nil, nil)
	detailFix.cfg.Storage = shared
	d := NewDetailPage(detailFix.cfg, origin+"/?lang=pt", origin)
	if d.State().Lang != state.LangPortuguese {
		t.Fatalf("detail page should pick up lang from referrer, got %v", d.State().Lang)
	}

	// Back on the list page with a bare URL: storage restores the filter.
	backFix := newFixture(regularItems(3), nil)
	backFix.cfg.Storage = shared
	back := NewListPage(backFix.cfg, url.Values{})
	if back.State().Lang != state.LangPortuguese {
		t.Errorf("returning to the list should restore lang=pt, got %v", back.State().Lang)
	}
}

// Detail pages have no in-place filtering: picking a tag navigates to the
// list page with the filter in the URL.
func TestDetailPageTagNavigates(t *testing.T) {
	const origin = "https://news.example.org"

	f := newFixture(nil, nil)
	c := NewDetailPage(f.cfg, origin+"/?lang=pt", origin)

	c.SetTag("go")

	if len(f.renderer.instructions) != 0 {
		t.Error("detail page mutators must not render in place")
	}
	if len(f.nav.opened) != 1 {
		t.Fatalf("expected one navigation, got %d", len(f.nav.opened))
	}
	target := f.nav.opened[0]
	want := "/?lang=pt&tag=go"
	if target != want {
		t.Errorf("navigated to %q, want %q", target, want)
	}

	// The filter also reached storage, so it survives even a lost referrer.
	if v, ok := f.cfg.Storage.Get("gazette.tag"); !ok || v != "go" {
		t.Errorf("expected tag persisted before navigation, got %q (present=%v)", v, ok)
	}
}

// When the index resolves after first render, Refresh folds snippet
// matches into the visible set without touching history.
func TestRefreshAfterIndexLoad(t *testing.T) {
	items := []visibility.Item{
		{ID: "titled", Title: "Rust ownership", Lang: state.LangEnglish},
		{ID: "hidden-gem", Title: "Systems notes", Lang: state.LangEnglish},
	}
	idxSource := &fakeIndex{}
	f := newFixture(items, nil)
	f.cfg.Index = idxSource
	c := NewListPage(f.cfg, mustQuery(t, "q=rust"))

	if got := f.renderer.last().VisibleIDs; !reflect.DeepEqual(got, []string{"titled"}) {
		t.Fatalf("degraded matching should show title match only, got %v", got)
	}

	historyLen := len(f.history.entries)
	idxSource.idx = search.NewIndex([]search.Entry{
		{Slug: "hidden-gem", Title: "Systems notes", Snippet: "why rust took over"},
	})
	c.Refresh()

	if got := f.renderer.last().VisibleIDs; !reflect.DeepEqual(got, []string{"titled", "hidden-gem"}) {
		t.Errorf("index arrival should surface snippet match, got %v", got)
	}
	if len(f.history.entries) != historyLen {
		t.Error("refresh must not touch history")
	}
}

func TestClearAll(t *testing.T) {
	f := newFixture(regularItems(25), nil)
	c := NewListPage(f.cfg, mustQuery(t, "q=story&lang=en&tag=news&page=2"))

	c.ClearAll()
	if !c.State().IsDefault() {
		t.Errorf("ClearAll should restore defaults, got %+v", c.State())
	}
	if last := f.history.last(); last.query != "" {
		t.Errorf("URL after ClearAll should be bare, got %q", last.query)
	}
	if _, ok := f.storage.Get("gazette.lang"); ok {
		t.Error("ClearAll should remove persisted language")
	}
}
