package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"gazette/internal/logging"
)

// IndexPath is the well-known location of the index relative to the site root.
const IndexPath = "/search-index.json"

// Loader fetches the search index exactly once per page lifetime. Until the
// fetch resolves, Snapshot reports no index and callers use degraded
// attribute-only matching. A failed fetch resolves to an empty index so
// nothing ever blocks on it; there is no retry because there is no backend
// worth retrying against.
type Loader struct {
	client  *http.Client
	baseURL string

	mu    sync.Mutex
	once  sync.Once
	done  chan struct{}
	index *Index
}

// NewLoader creates a loader for the index at baseURL + IndexPath.
func NewLoader(baseURL string, timeout time.Duration) *Loader {
	return &Loader{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		done:    make(chan struct{}),
	}
}

// Start begins the one-shot fetch. Safe to call more than once; only the
// first call does anything.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		go func() {
			idx, err := l.fetch(ctx)
			if err != nil {
				logging.Warn("search index unavailable, degraded matching in effect", "error", err)
				idx = NewIndex(nil)
			}
			l.mu.Lock()
			l.index = idx
			l.mu.Unlock()
			close(l.done)
		}()
	})
}

// Snapshot returns the loaded index, or (nil, false) while the fetch is
// still in flight. Never blocks.
func (l *Loader) Snapshot() (*Index, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index == nil {
		return nil, false
	}
	return l.index, true
}

// Wait blocks until the fetch has resolved or the context is done. Used by
// non-interactive consumers (the CLI search command); the page runtime only
// ever calls Snapshot.
func (l *Loader) Wait(ctx context.Context) (*Index, error) {
	select {
	case <-l.done:
		idx, _ := l.Snapshot()
		return idx, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) fetch(ctx context.Context) (*Index, error) {
	target, err := url.JoinPath(l.baseURL, IndexPath)
	if err != nil {
		return nil, fmt.Errorf("join index url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch index: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	idx, err := ParseIndex(data)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	logging.Debug("search index loaded", "entries", idx.Len())
	return idx, nil
}
