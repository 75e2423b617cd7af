// Package app wires the pipeline: poll feeds, merge them into a fair round,
// rewrite each entry, drop near-duplicates, publish the rest with throttling.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/deusflow/newsrelay/internal/config"
	"github.com/deusflow/newsrelay/internal/dedup"
	"github.com/deusflow/newsrelay/internal/dispatch"
	"github.com/deusflow/newsrelay/internal/history"
	"github.com/deusflow/newsrelay/internal/logger"
	"github.com/deusflow/newsrelay/internal/metrics"
	"github.com/deusflow/newsrelay/internal/rss"
	"github.com/deusflow/newsrelay/internal/scheduler"
)

// Collaborator contracts. Each failure mode is handled locally; nothing in
// the per-item pipeline terminates the process.

type Fetcher interface {
	FetchAll(urls []string) [][]rss.Entry
}

type Rewriter interface {
	// Rewrite never fails; it falls back to the original pair.
	Rewrite(ctx context.Context, title, text string) (string, string)
}

type Detector interface {
	IsDuplicate(ctx context.Context, candidate string, records []history.Record) (bool, error)
}

type Publisher interface {
	SendMessage(ctx context.Context, text string) error
	SendVideo(ctx context.Context, videoURL, caption string) error
	SendPhotoGroup(ctx context.Context, photoURLs []string, caption string) error
}

type App struct {
	cfg       *config.Config
	fetcher   Fetcher
	rewriter  Rewriter
	detector  Detector
	publisher Publisher
	store     history.Store
	throttler *dispatch.Throttler

	now func() time.Time
}

func New(cfg *config.Config, fetcher Fetcher, rewriter Rewriter, detector Detector, publisher Publisher, store history.Store) *App {
	return &App{
		cfg:       cfg,
		fetcher:   fetcher,
		rewriter:  rewriter,
		detector:  detector,
		publisher: publisher,
		store:     store,
		throttler: dispatch.NewThrottler(cfg.BurstLimit, cfg.BurstDelay, cfg.PacingDelay),
		now:       time.Now,
	}
}

// Run loops poll cycles until the context is cancelled. History is loaded
// once at start; a load failure is recoverable and leaves an empty window.
func (a *App) Run(ctx context.Context) {
	if err := a.store.Load(); err != nil {
		logger.Warn("history load failed, continuing with empty window", "error", err)
	}

	urls := a.feedURLs()
	logger.Info("starting poll loop", "feeds", len(urls), "poll_interval", a.cfg.PollInterval)

	for {
		a.runCycle(ctx, urls)
		metrics.Global.SetLastCycle()

		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case <-time.After(a.cfg.PollInterval):
		}
	}
}

// RunCycle executes a single poll cycle and returns the number of published
// entries.
func (a *App) RunCycle(ctx context.Context) int {
	return a.runCycle(ctx, a.feedURLs())
}

func (a *App) runCycle(ctx context.Context, urls []string) int {
	feeds := a.fetcher.FetchAll(urls)
	round := scheduler.BuildRound(feeds)
	if len(round) == 0 {
		logger.Info("no entries this cycle")
		return 0
	}

	logger.Info("starting round", "entries", len(round))
	sent := a.throttler.ProcessRound(ctx, round, a.processEntry)
	logger.Info("round done", "sent", sent)
	return sent
}

// processEntry runs one entry through rewrite, dedup and publish. It returns
// true only when the publish succeeded and the text was recorded.
func (a *App) processEntry(ctx context.Context, entry rss.Entry) bool {
	metrics.Global.IncrementEntriesProcessed()

	title, text := a.rewriter.Rewrite(ctx, entry.Title, rss.CleanHTML(entry.SummaryHTML))
	fullText := "<b>" + title + "</b>\n\n" + text

	isDup, err := a.detector.IsDuplicate(ctx, text, a.store.Snapshot())
	if err != nil {
		// Encoder failure: skip the item entirely, it may come back next cycle.
		if errors.Is(err, dedup.ErrEmbedding) {
			metrics.Global.IncrementEmbeddingErrors()
		}
		logger.Error("duplicate check failed, skipping entry", "title", entry.Title, "error", err)
		return false
	}
	if isDup {
		metrics.Global.IncrementDuplicatesFiltered()
		logger.Info("duplicate found, skipping", "title", entry.Title)
		return false
	}

	if err := a.publish(ctx, entry, fullText); err != nil {
		metrics.Global.IncrementPublishFailures()
		metrics.Global.SetError(err.Error())
		logger.Error("publish failed", "title", entry.Title, "error", err)
		return false
	}

	if err := a.store.Append(text, a.now()); err != nil {
		// Durability is best-effort; the in-memory window already has the record.
		logger.Error("history persistence failed", "error", err)
	}

	metrics.Global.IncrementPostsPublished()
	logger.Info("published", "title", title)
	return true
}

func (a *App) publish(ctx context.Context, entry rss.Entry, fullText string) error {
	switch {
	case entry.VideoURL != "":
		return a.publisher.SendVideo(ctx, entry.VideoURL, fullText)
	case len(entry.Photos) > 0:
		return a.publisher.SendPhotoGroup(ctx, entry.Photos, fullText)
	default:
		return a.publisher.SendMessage(ctx, fullText)
	}
}

func (a *App) feedURLs() []string {
	urls := append([]string(nil), a.cfg.FeedURLs...)
	if a.cfg.FeedsConfigPath != "" {
		extra, err := rss.LoadFeeds(a.cfg.FeedsConfigPath)
		if err != nil {
			logger.Warn("failed to load feeds config, using env feeds only",
				"path", a.cfg.FeedsConfigPath, "error", err)
			return urls
		}
		urls = append(urls, extra...)
	}
	return urls
}
