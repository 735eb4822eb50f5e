package feed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"gazette/internal/config"
	"gazette/internal/logging"
	"gazette/internal/store"
)

// Importer fetches every configured feed and persists the results. One
// source failing does not stop the run; the failure is recorded on the
// source row and logged.
type Importer struct {
	fetcher *Fetcher
	store   *store.Store
	limiter *rate.Limiter
}

// NewImporter creates an Importer over the given store. Fetches are spaced
// out by the limiter so a long feed list doesn't hammer remote hosts.
func NewImporter(st *store.Store, timeout time.Duration) *Importer {
	return &Importer{
		fetcher: NewFetcher(timeout),
		store:   st,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// Run imports all feeds, returning the number of newly stored posts.
func (im *Importer) Run(ctx context.Context, feeds []config.FeedConfig) (int, error) {
	jobID := uuid.NewString()
	log := logging.WithPrefix("import")
	if log != nil {
		log.Info("import started", "job", jobID, "feeds", len(feeds))
	}

	total := 0
	for _, src := range feeds {
		if err := im.limiter.Wait(ctx); err != nil {
			return total, err
		}

		posts, err := im.fetcher.Fetch(ctx, src)
		if err != nil {
			logging.Warn("feed fetch failed", "job", jobID, "source", src.Name, "error", err)
			if serr := im.store.UpdateSourceStatus(src.Name, 0, err.Error()); serr != nil {
				logging.Error("record source failure", "source", src.Name, "error", serr)
			}
			continue
		}

		saved, err := im.store.SavePosts(posts)
		if err != nil {
			return total, err
		}
		total += saved

		if err := im.store.UpdateSourceStatus(src.Name, len(posts), ""); err != nil {
			logging.Error("record source status", "source", src.Name, "error", err)
		}
		logging.Info("feed imported", "job", jobID, "source", src.Name, "fetched", len(posts), "new", saved)
	}

	return total, nil
}
