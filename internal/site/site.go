// Package site exports the static pages and data payloads the reader
// runtime consumes: the list page with one card per post, a detail page
// per post, the search index JSON and the tag taxonomy.
package site

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"gazette/internal/config"
	"gazette/internal/logging"
	"gazette/internal/markdown"
	"gazette/internal/search"
	"gazette/internal/state"
	"gazette/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// card is a post prepared for templating.
type card struct {
	store.Post
}

// TagList renders the tag set the way the runtime reads it back: space-joined.
func (c card) TagList() string {
	return strings.Join(c.Tags, " ")
}

type listData struct {
	Title  string
	Tags   []string
	Pinned *card
	Posts  []card
}

// Builder writes the static export.
type Builder struct {
	cfg   *config.Config
	store *store.Store
}

// NewBuilder creates a Builder.
func NewBuilder(cfg *config.Config, st *store.Store) *Builder {
	return &Builder{cfg: cfg, store: st}
}

// Build writes the whole site into the configured output directory:
// index.html, posts/<slug>/index.html, search-index.json and tags.json.
func (b *Builder) Build() error {
	posts, err := b.store.Published()
	if err != nil {
		return fmt.Errorf("load posts: %w", err)
	}

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := b.writeListPage(posts); err != nil {
		return err
	}
	for _, p := range posts {
		if err := b.writeDetailPage(p); err != nil {
			return err
		}
	}
	if err := b.writeSearchIndex(posts); err != nil {
		return err
	}
	if err := b.writeTags(); err != nil {
		return err
	}
	if err := b.writeAssets(); err != nil {
		return err
	}

	logging.Info("site built", "posts", len(posts), "output", b.cfg.OutputDir)
	return nil
}

func (b *Builder) writeListPage(posts []store.Post) error {
	data := listData{Title: b.cfg.Title}

	for _, p := range posts {
		c := card{p}
		if p.Pinned && data.Pinned == nil {
			data.Pinned = &c
			continue
		}
		data.Posts = append(data.Posts, c)
	}

	tags, err := b.store.Tags()
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	data.Tags = sortedTags(tags)

	f, err := os.Create(filepath.Join(b.cfg.OutputDir, "index.html"))
	if err != nil {
		return fmt.Errorf("create list page: %w", err)
	}
	defer f.Close()

	if err := listTmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render list page: %w", err)
	}
	return nil
}

func (b *Builder) writeDetailPage(p store.Post) error {
	body, err := markdown.Render(p.Body)
	if err != nil {
		return fmt.Errorf("render %s: %w", p.Slug, err)
	}

	dir := filepath.Join(b.cfg.OutputDir, "posts", p.Slug)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create post directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return fmt.Errorf("create detail page: %w", err)
	}
	defer f.Close()

	data := struct {
		SiteTitle string
		Post      card
		Body      template.HTML
	}{b.cfg.Title, card{p}, body}

	if err := detailTmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render detail page %s: %w", p.Slug, err)
	}
	return nil
}

// writeSearchIndex emits the payload the runtime's search.Loader fetches.
// Entries use the same struct the loader decodes, so the wire format can't
// drift between the two sides.
func (b *Builder) writeSearchIndex(posts []store.Post) error {
	entries := make([]search.Entry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, search.Entry{
			Slug:        p.Slug,
			Title:       p.Title,
			Tags:        p.Tags,
			Lang:        state.FoldLanguage(p.Lang),
			Snippet:     p.Snippet,
			PublishedAt: p.PublishedAt,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal search index: %w", err)
	}
	path := filepath.Join(b.cfg.OutputDir, strings.TrimPrefix(search.IndexPath, "/"))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write search index: %w", err)
	}
	return nil
}

func (b *Builder) writeTags() error {
	tags, err := b.store.Tags()
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}

	data, err := json.MarshalIndent(tags, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.cfg.OutputDir, "tags.json"), data, 0644); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	return nil
}

// stylesheet is the whole visual layer. The runtime hides cards by
// toggling the "hidden" class, so that rule is load-bearing.
const stylesheet = `body { max-width: 64rem; margin: 0 auto; padding: 0 1rem; font-family: Georgia, serif; }
header h1 { font-size: 2.5rem; border-bottom: 3px double #222; padding-bottom: .5rem; }
.hidden { display: none; }
.card { border-bottom: 1px solid #ddd; padding: 1rem 0; }
.card .meta { color: #666; font-size: .85rem; }
#highlight .card { border: 1px solid #222; padding: 1rem; }
.tag-chip { margin-right: .5rem; }
.tag-chip.active { font-weight: bold; }
#pagination { display: flex; gap: 1rem; align-items: center; padding: 1rem 0; }
`

func (b *Builder) writeAssets() error {
	dir := filepath.Join(b.cfg.OutputDir, "assets")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create assets directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "gazette.css"), []byte(stylesheet), 0644); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	return nil
}

// sortedTags orders the taxonomy by count descending, name ascending, so
// the filter chips render most-used first.
func sortedTags(counts map[string]int) []string {
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	return tags
}
