// Package controller orchestrates the reader runtime. The Controller is the
// only mutation point for the filter state: every user action funnels
// through it, fans out to the pure visibility and pagination computations,
// and ends in exactly one render instruction. No other component reads the
// URL, storage, or the document on its own.
package controller

import (
	"net/url"

	"gazette/internal/paginate"
	"gazette/internal/search"
	"gazette/internal/state"
	"gazette/internal/visibility"
)

// History is the browser history port. Replace is used when a URL change is
// a side effect of filtering; Push only for a deliberate page turn, so the
// back button undoes pagination before it undoes the filter.
type History interface {
	Push(query string)
	Replace(query string)
}

// Navigator performs a full cross-page navigation. Detail pages have no
// in-place filtering UI; picking a filter there navigates to the list page
// with the filter encoded in the URL.
type Navigator interface {
	Open(target string)
}

// IndexSource yields the current search index snapshot without blocking.
// search.Loader satisfies this.
type IndexSource interface {
	Snapshot() (*search.Index, bool)
}

// Renderer applies a render instruction to the page. It never mutates
// state and never reads anything back.
type Renderer interface {
	Apply(Instruction)
}

// Instruction is the complete, self-contained description of what the page
// should look like. Re-running the pipeline with the same state and inputs
// yields an identical instruction.
type Instruction struct {
	VisibleIDs   []string // ids on the current page, in document order
	TotalVisible int      // size of the whole visible set across pages
	Pinned       visibility.Disposition
	Page         int
	TotalPages   int
	Empty        bool
	PageChanged  bool
	State        state.FilterState
}

type historyMode int

const (
	historyNone historyMode = iota
	historyReplace
	historyPush
)

// Config wires a Controller to its collaborators.
type Config struct {
	Items     []visibility.Item
	Storage   state.Storage
	History   History
	Navigator Navigator
	Index     IndexSource
	Renderer  Renderer
	ListPath  string // path of the list page, for detail -> list navigation
}

// Controller owns the canonical FilterState for one page.
type Controller struct {
	cfg       Config
	st        state.FilterState
	lastPage  int
	lastTotal int
	detail    bool
}

// NewListPage creates the controller for a list page, resolving the initial
// state with precedence URL > storage > default, and renders once. The
// resolved page number is honored if still in range after recomputation,
// else clamped; the URL is normalized via a history replace either way.
func NewListPage(cfg Config, query url.Values) *Controller {
	c := &Controller{cfg: cfg, st: state.ResolveListPage(query, cfg.Storage)}
	c.lastPage = c.st.Page
	c.apply(historyReplace, false)
	return c
}

// NewDetailPage creates the controller for a detail page, resolving filter
// hints with precedence same-origin referrer > storage > default. Detail
// pages carry no URL state and render no list, so nothing is emitted until
// a mutator navigates back to the list.
func NewDetailPage(cfg Config, referrer, origin string) *Controller {
	c := &Controller{
		cfg:    cfg,
		st:     state.ResolveDetailPage(referrer, origin, cfg.Storage),
		detail: true,
	}
	c.lastPage = c.st.Page
	state.EncodeStorage(cfg.Storage, c.st)
	return c
}

// State returns a snapshot of the canonical state.
func (c *Controller) State() state.FilterState {
	return c.st
}

// SetQuery updates the search text and resets to the first page.
func (c *Controller) SetQuery(q string) {
	c.st.Query = q
	c.st.Page = 1
	c.apply(historyReplace, false)
}

// SetLanguage updates the language filter and resets to the first page.
// On a detail page this navigates to the list page instead.
func (c *Controller) SetLanguage(lang state.Language) {
	c.st.Lang = lang
	c.st.Page = 1
	if c.detail {
		c.navigateToList()
		return
	}
	c.apply(historyReplace, false)
}

// SetTag activates a tag filter, or clears it when the active tag is
// reselected. Resets to the first page. On a detail page this navigates to
// the list page instead.
func (c *Controller) SetTag(tag string) {
	norm := search.Normalize(tag)
	if norm == search.Normalize(c.st.Tag) && c.st.Tag != "" {
		c.st.Tag = ""
	} else {
		c.st.Tag = norm
	}
	c.st.Page = 1
	if c.detail {
		c.navigateToList()
		return
	}
	c.apply(historyReplace, false)
}

// ClearAll resets every filter to its default.
func (c *Controller) ClearAll() {
	c.st = state.Default()
	if c.detail {
		c.navigateToList()
		return
	}
	c.apply(historyReplace, false)
}

// GoToPage turns to page n. Out-of-range requests clamp; a request for the
// current page is a no-op. Page turns push history so the back button
// undoes them first.
func (c *Controller) GoToPage(n int) {
	if c.lastTotal > 0 {
		n = paginate.Clamp(n, c.lastTotal)
	}
	if n == c.st.Page {
		return
	}
	c.st.Page = n
	c.apply(historyPush, true)
}

// NextPage turns one page forward; a no-op at the last page.
func (c *Controller) NextPage() {
	c.GoToPage(c.st.Page + 1)
}

// PrevPage turns one page back; a no-op at the first page.
func (c *Controller) PrevPage() {
	c.GoToPage(c.st.Page - 1)
}

// Refresh re-runs the pipeline without a state mutation. Called when the
// index load resolves, since snippet matches may change the visible set.
func (c *Controller) Refresh() {
	c.apply(historyNone, false)
}

// apply is the fixed pipeline: recompute the visible set, clamp the page,
// persist, update history, emit one render instruction. No intermediate
// results are cached between runs.
func (c *Controller) apply(mode historyMode, deliberatePageTurn bool) {
	idx, _ := c.cfg.Index.Snapshot()
	res := visibility.Compute(c.cfg.Items, c.st, idx)
	pg := paginate.Compute(len(res.Visible), c.st.Page)
	c.st.Page = pg.Page

	state.EncodeStorage(c.cfg.Storage, c.st)

	encoded := state.EncodeQuery(c.st).Encode()
	switch mode {
	case historyPush:
		if c.cfg.History != nil {
			c.cfg.History.Push(encoded)
		}
	case historyReplace:
		if c.cfg.History != nil {
			c.cfg.History.Replace(encoded)
		}
	}

	pageChanged := deliberatePageTurn || pg.Page != c.lastPage
	c.lastPage = pg.Page
	c.lastTotal = pg.TotalPages

	instr := Instruction{
		VisibleIDs:   paginate.Slice(res.Visible, pg),
		TotalVisible: len(res.Visible),
		Pinned:       res.Pinned,
		Page:         pg.Page,
		TotalPages:   pg.TotalPages,
		Empty:        len(res.Visible) == 0,
		PageChanged:  pageChanged,
		State:        c.st,
	}
	if c.cfg.Renderer != nil {
		c.cfg.Renderer.Apply(instr)
	}
}

// navigateToList leaves a detail page for the list page, carrying the
// session-local filters in the target URL. Storage is written first so the
// filters survive even if the navigation never lands.
func (c *Controller) navigateToList() {
	state.EncodeStorage(c.cfg.Storage, c.st)

	target := c.cfg.ListPath
	if target == "" {
		target = "/"
	}
	carried := state.FilterState{Query: "", Lang: c.st.Lang, Tag: c.st.Tag, Page: 1}
	if q := state.EncodeQuery(carried).Encode(); q != "" {
		target += "?" + q
	}
	if c.cfg.Navigator != nil {
		c.cfg.Navigator.Open(target)
	}
}
