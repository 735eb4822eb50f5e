// Package feed imports posts from remote RSS/Atom feeds.
//
// This package handles retrieving content from configured sources and
// converting entries to store.Post records for persistence. It never writes
// to the store itself; the Importer decides what to do with fetched posts.
package feed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"gazette/internal/config"
	"gazette/internal/store"
)

// Fetcher retrieves posts from feed sources.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with the given HTTP client timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves posts from a source. Returns posts and any error.
// Does NOT store posts - caller decides what to do with them.
//
// The function respects context cancellation and will return early
// if the context is cancelled.
func (f *Fetcher) Fetch(ctx context.Context, src config.FeedConfig) ([]store.Post, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set a user agent to be a good citizen
	req.Header.Set("User-Agent", "gazette/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	parser := gofeed.NewParser()
	parsed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	now := time.Now()
	posts := make([]store.Post, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		posts = append(posts, convertEntry(entry, src, now))
	}

	return posts, nil
}

// convertEntry converts a gofeed.Item to a store.Post.
func convertEntry(entry *gofeed.Item, src config.FeedConfig, fetchTime time.Time) store.Post {
	// Published time falls back through updated time to fetch time.
	published := fetchTime
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	body := entry.Content
	if body == "" {
		body = entry.Description
	}

	return store.Post{
		Slug:        slugFor(entry),
		Title:       entry.Title,
		Body:        body,
		Snippet:     Snippet(entry.Description, snippetMaxLen),
		Lang:        src.Lang,
		Tags:        mergeTags(src.Tags, entry.Categories),
		SourceName:  src.Name,
		PublishedAt: published,
		FetchedAt:   fetchTime,
	}
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// slugFor derives a stable slug from the entry title, falling back to a
// hash of the link for untitled entries. Importing the same feed twice
// yields the same slugs, which is what lets SavePosts upsert.
func slugFor(entry *gofeed.Item) string {
	slug := strings.Trim(slugCleaner.ReplaceAllString(strings.ToLower(entry.Title), "-"), "-")
	if slug == "" {
		slug = shortHash(entry.Link)
	}
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	return slug
}

// shortHash generates a stable 16-character id from a URL.
func shortHash(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))[:16]
}

// mergeTags combines the source's configured tags with the entry's own
// categories, lowercased and deduplicated, preserving first-seen order.
func mergeTags(configured, categories []string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, t := range append(append([]string{}, configured...), categories...) {
		t = strings.ToLower(strings.TrimSpace(t))
		// Multi-word categories can't survive the space-joined storage
		// format; fold them to hyphenated form.
		t = strings.ReplaceAll(t, " ", "-")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
