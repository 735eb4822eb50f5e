// Package preview is a terminal front end for the list-page filter
// pipeline. It drives a real controller with in-memory ports, so what it
// shows is exactly what the published page would show for the same input.
package preview

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gazette/internal/controller"
	"gazette/internal/search"
	"gazette/internal/state"
	"gazette/internal/store"
	"gazette/internal/visibility"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0d1117")).
			Background(lipgloss.Color("#c9d1d9")).
			Bold(true).
			Padding(0, 1)
	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#484f58"))
	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#58a6ff"))
	activeChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0d1117")).
			Background(lipgloss.Color("#58a6ff")).
			Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#d29922")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c9d1d9")).
			Bold(true)
	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8b949e"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#484f58"))
)

var languageOrder = []state.Language{
	state.LangAll,
	state.LangEnglish,
	state.LangPortuguese,
	state.LangSpanish,
}

// memStorage stands in for browser local storage.
type memStorage map[string]string

func (m memStorage) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}
func (m memStorage) Set(key, value string) { m[key] = value }
func (m memStorage) Delete(key string)     { delete(m, key) }

// historyLog records URL updates so the status bar can show the address
// the browser would be on.
type historyLog struct {
	current string
}

func (h *historyLog) Push(query string)    { h.current = query }
func (h *historyLog) Replace(query string) { h.current = query }

type noNavigator struct{}

func (noNavigator) Open(string) {}

// staticIndex serves a prebuilt index; there is no fetch in the terminal.
type staticIndex struct {
	idx *search.Index
}

func (s staticIndex) Snapshot() (*search.Index, bool) { return s.idx, true }

// capture retains the latest render instruction for the View to draw.
type capture struct {
	in controller.Instruction
}

func (c *capture) Apply(in controller.Instruction) { c.in = in }

// App is the root Bubble Tea model.
type App struct {
	title string
	ctrl  *controller.Controller
	rec   *capture
	hist  *historyLog

	byID   map[string]visibility.Item
	pinned *visibility.Item
	tags   []string

	input  textinput.Model
	width  int
	height int
	ready  bool
}

// New builds the preview over the given posts. The controller starts from
// default state, as a first visit with clean storage would.
func New(title string, posts []store.Post) App {
	items := make([]visibility.Item, 0, len(posts))
	entries := make([]search.Entry, 0, len(posts))
	byID := make(map[string]visibility.Item, len(posts))
	var tags []string
	seen := make(map[string]bool)

	for _, p := range posts {
		it := visibility.Item{
			ID:     p.Slug,
			Title:  p.Title,
			Tags:   p.Tags,
			Lang:   state.Language(p.Lang),
			Pinned: p.Pinned,
		}
		items = append(items, it)
		byID[p.Slug] = it
		entries = append(entries, search.Entry{
			Slug:        p.Slug,
			Title:       p.Title,
			Tags:        p.Tags,
			Lang:        state.FoldLanguage(p.Lang),
			Snippet:     p.Snippet,
			PublishedAt: p.PublishedAt,
		})
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}

	input := textinput.New()
	input.Placeholder = "search stories"
	input.Prompt = "/ "
	input.CharLimit = 80

	rec := &capture{}
	hist := &historyLog{}
	cfg := controller.Config{
		Items:     items,
		Storage:   memStorage{},
		History:   hist,
		Navigator: noNavigator{},
		Index:     staticIndex{search.NewIndex(entries)},
		Renderer:  rec,
		ListPath:  "/",
	}

	a := App{
		title: title,
		rec:   rec,
		hist:  hist,
		byID:  byID,
		tags:  tags,
		input: input,
	}
	for i := range items {
		if items[i].Pinned {
			a.pinned = &items[i]
			break
		}
	}
	a.ctrl = controller.NewListPage(cfg, url.Values{})
	return a
}

// Init starts the cursor blink.
func (a App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the search box is focused, almost everything is typing.
	if a.input.Focused() {
		switch msg.String() {
		case "esc", "enter":
			a.input.Blur()
			return a, nil
		case "ctrl+c":
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		a.ctrl.SetQuery(a.input.Value())
		return a, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "/":
		return a, a.input.Focus()

	case "l":
		a.ctrl.SetLanguage(nextLanguage(a.ctrl.State().Lang))
		return a, nil

	case "t":
		if next := nextTag(a.tags, a.ctrl.State().Tag); next != "" {
			a.ctrl.SetTag(next)
		} else if cur := a.ctrl.State().Tag; cur != "" {
			a.ctrl.SetTag(cur) // toggles the active tag off
		}
		return a, nil

	case "n", "right":
		a.ctrl.NextPage()
		return a, nil

	case "p", "left":
		a.ctrl.PrevPage()
		return a, nil

	case "g", "home":
		a.ctrl.GoToPage(1)
		return a, nil

	case "c":
		a.ctrl.ClearAll()
		a.input.SetValue("")
		return a, nil
	}

	return a, nil
}

// nextLanguage cycles through the supported languages.
func nextLanguage(cur state.Language) state.Language {
	for i, l := range languageOrder {
		if l == cur {
			return languageOrder[(i+1)%len(languageOrder)]
		}
	}
	return state.LangAll
}

// nextTag returns the tag after cur in the taxonomy, or "" when cur is the
// last one, so the cycle passes through "no tag".
func nextTag(tags []string, cur string) string {
	if len(tags) == 0 {
		return ""
	}
	if cur == "" {
		return tags[0]
	}
	for i, t := range tags {
		if t == cur {
			if i == len(tags)-1 {
				return ""
			}
			return tags[i+1]
		}
	}
	return tags[0]
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	in := a.rec.in
	var b strings.Builder

	b.WriteString(headerStyle.Render(a.title))
	b.WriteString("  ")
	b.WriteString(urlStyle.Render(pageURL(a.hist.current)))
	b.WriteString("\n\n")

	b.WriteString(a.input.View())
	b.WriteString("\n")
	b.WriteString(a.renderFilterBar(in.State))
	b.WriteString("\n\n")

	if in.Pinned == visibility.PinnedHighlight && a.pinned != nil {
		card := titleStyle.Render(a.pinned.Title) + "\n" +
			metaStyle.Render(itemMeta(*a.pinned))
		b.WriteString(highlightStyle.Render(card))
		b.WriteString("\n\n")
	}

	if in.Empty {
		b.WriteString(dimStyle.Render("No stories match. Press c to clear filters."))
		b.WriteString("\n")
	}

	for _, id := range in.VisibleIDs {
		it, ok := a.byID[id]
		if !ok {
			continue
		}
		b.WriteString("  ")
		b.WriteString(titleStyle.Render(truncate(it.Title, a.width-6)))
		b.WriteString("\n  ")
		b.WriteString(metaStyle.Render(itemMeta(it)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderStatusBar(in))
	return b.String()
}

func (a App) renderFilterBar(s state.FilterState) string {
	var parts []string

	lang := "lang:" + string(s.Lang)
	if s.Lang == state.LangAll {
		parts = append(parts, chipStyle.Render(lang))
	} else {
		parts = append(parts, activeChipStyle.Render(lang))
	}

	for _, t := range a.tags {
		if t == s.Tag {
			parts = append(parts, activeChipStyle.Render("#"+t))
		} else {
			parts = append(parts, chipStyle.Render("#"+t))
		}
	}
	return strings.Join(parts, " ")
}

func (a App) renderStatusBar(in controller.Instruction) string {
	count := fmt.Sprintf("%d stories", in.TotalVisible)
	if in.TotalVisible == 1 {
		count = "1 story"
	}
	left := fmt.Sprintf(" Page %d of %d · %s", in.Page, in.TotalPages, count)
	hints := "/ search  l lang  t tag  ←/→ page  c clear  q quit "

	pad := a.width - lipgloss.Width(left) - lipgloss.Width(hints)
	if pad < 1 {
		pad = 1
	}
	return metaStyle.Render(left) + strings.Repeat(" ", pad) + dimStyle.Render(hints)
}

// pageURL shows the address the list page would be on.
func pageURL(query string) string {
	if query == "" {
		return "/"
	}
	return "/?" + query
}

func itemMeta(it visibility.Item) string {
	meta := string(it.Lang)
	if len(it.Tags) > 0 {
		meta += " · " + strings.Join(it.Tags, " ")
	}
	return meta
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}

// State exposes the controller state (for testing).
func (a App) State() state.FilterState {
	return a.ctrl.State()
}

// Instruction exposes the latest render instruction (for testing).
func (a App) Instruction() controller.Instruction {
	return a.rec.in
}
