// Package render applies render instructions to the exported list page.
// It is pure with respect to state: everything it does comes from the
// instruction, nothing is read back from the document, storage, or the URL.
package render

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gazette/internal/controller"
	"gazette/internal/state"
	"gazette/internal/visibility"
)

// Selectors and class names shared with the site exporter's templates.
const (
	selCards       = "#cards article.card"
	selHighlight   = "#highlight"
	selResultCount = "#result-count"
	selPageLabel   = "#page-label"
	selPrev        = "#prev-page"
	selNext        = "#next-page"
	selEmptyNote   = "#empty-note"

	classHidden = "hidden"
)

// DocRenderer renders instructions onto a goquery document.
type DocRenderer struct {
	doc *goquery.Document

	// scrollPending is set when the applied instruction changed pages; the
	// host consumes it to scroll the results container back to the top.
	scrollPending bool
}

// NewDocRenderer wraps a parsed list page.
func NewDocRenderer(doc *goquery.Document) *DocRenderer {
	return &DocRenderer{doc: doc}
}

// Apply realizes an instruction: card visibility, the pinned highlight
// slot, the result counter, the page label, and the nav control state.
func (r *DocRenderer) Apply(in controller.Instruction) {
	visible := make(map[string]bool, len(in.VisibleIDs))
	for _, id := range in.VisibleIDs {
		visible[id] = true
	}

	r.doc.Find(selCards).Each(func(_ int, card *goquery.Selection) {
		slug := card.AttrOr("data-slug", "")
		pinned := card.AttrOr("data-pinned", "") == "true"
		show := visible[slug]
		if pinned {
			// The pinned card only ever renders in the highlight slot.
			show = false
		}
		setHidden(card, !show)
	})

	highlight := r.doc.Find(selHighlight)
	setHidden(highlight, in.Pinned != visibility.PinnedHighlight)

	r.doc.Find(selResultCount).SetText(resultLabel(in))
	r.doc.Find(selPageLabel).SetText(fmt.Sprintf("Page %d of %d", in.Page, in.TotalPages))
	setDisabled(r.doc.Find(selPrev), in.Page <= 1)
	setDisabled(r.doc.Find(selNext), in.Page >= in.TotalPages)
	r.doc.Find(selEmptyNote).Each(func(_ int, note *goquery.Selection) {
		setHidden(note, !in.Empty || in.Pinned == visibility.PinnedHighlight)
	})

	if in.PageChanged {
		r.scrollPending = true
	}
}

// ConsumeScroll reports whether the last applied instruction asked for a
// scroll reset, clearing the flag.
func (r *DocRenderer) ConsumeScroll() bool {
	s := r.scrollPending
	r.scrollPending = false
	return s
}

func resultLabel(in controller.Instruction) string {
	if in.Empty {
		return "No stories match"
	}
	if in.TotalVisible == 1 {
		return "1 story"
	}
	return fmt.Sprintf("%d stories", in.TotalVisible)
}

func setHidden(sel *goquery.Selection, hidden bool) {
	if hidden {
		sel.AddClass(classHidden)
	} else {
		sel.RemoveClass(classHidden)
	}
}

func setDisabled(sel *goquery.Selection, disabled bool) {
	if disabled {
		sel.SetAttr("disabled", "disabled")
	} else {
		sel.RemoveAttr("disabled")
	}
}

// ParseItems reads the item descriptors off the exported page markup. This
// is host wiring, done once at load time; the renderer itself never reads
// the document afterwards.
func ParseItems(doc *goquery.Document) []visibility.Item {
	var items []visibility.Item
	doc.Find(selCards).Each(func(_ int, card *goquery.Selection) {
		item := visibility.Item{
			ID:     card.AttrOr("data-slug", ""),
			Title:  card.AttrOr("data-title", ""),
			Lang:   state.Language(card.AttrOr("data-lang", "")),
			Pinned: card.AttrOr("data-pinned", "") == "true",
		}
		if raw := strings.TrimSpace(card.AttrOr("data-tags", "")); raw != "" {
			item.Tags = strings.Fields(raw)
		}
		items = append(items, item)
	})
	return items
}
