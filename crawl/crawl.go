// Package crawl provides the crawl-extract-index pipeline: URL scheduling
// and deduplication, bounded-concurrency fetching with retry and backoff,
// content extraction, and rate-limited batched index writes.
package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/webindex"
	"github.com/google/uuid"
)

// Ensure Orchestrator implements webindex.CrawlService at compile time.
var _ webindex.CrawlService = (*Orchestrator)(nil)

// Orchestrator coordinates one crawl run: it seeds the scheduler, drives
// targets through the worker pool, and forwards completed records to the
// batch indexer. The scheduler and indexer are created fresh for each run;
// no crawl state survives across runs.
type Orchestrator struct {
	Fetcher   webindex.Fetcher
	Extractor webindex.Extractor
	Store     webindex.IndexStore

	// Converter, if set, renders content fragments to markdown for the
	// index document body.
	Converter webindex.Converter

	// Sitemaps enables RunSitemap. Optional for RunCrawl.
	Sitemaps webindex.SitemapService

	// RateLimiter, if set, throttles fetches per target domain.
	RateLimiter webindex.DomainLimiter

	// Concurrency bounds simultaneous fetches. Defaults to DefaultConcurrency.
	Concurrency int

	// MaxAttempts is the per-URL fetch attempt budget. Defaults to
	// DefaultMaxAttempts.
	MaxAttempts int

	// BaseDelay is the linear backoff unit between attempts. Defaults to
	// DefaultBaseDelay.
	BaseDelay time.Duration

	// DispatchDelay throttles workers between completions. Defaults to
	// DefaultDispatchDelay.
	DispatchDelay time.Duration

	// BatchSize is the index flush threshold. Defaults to DefaultBatchSize.
	BatchSize int

	Logger *slog.Logger
}

// RunCrawl crawls the given URLs and indexes the extracted records.
// Duplicate URLs are counted as skipped, failed URLs as failed; one bad URL
// never aborts the run. The returned result is populated even when an error
// is returned: index-store failures and cancellation surface as a single
// aggregate error after all crawl work has completed.
func (o *Orchestrator) RunCrawl(ctx context.Context, source string, urls []string) (*webindex.CrawlResult, error) {
	if len(urls) == 0 {
		return nil, webindex.Errorf(webindex.EINVALID, "no URLs to crawl")
	}
	if source == "" {
		return nil, webindex.Errorf(webindex.EINVALID, "source label required")
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	result := &webindex.CrawlResult{
		RunID:  uuid.New().String(),
		Source: source,
	}
	logger = logger.With("run_id", result.RunID, "source", source)

	scheduler := NewScheduler(source)
	for _, u := range urls {
		if !scheduler.Offer(u, "", 0) {
			result.Skipped++
		}
	}
	logger.Info("crawl started", "urls", len(urls), "queued", scheduler.Count(), "skipped", result.Skipped)

	indexer := NewBatchIndexer(o.Store,
		WithBatchSize(o.BatchSize),
		WithConverter(o.Converter),
		WithIndexerLogger(logger),
	)

	runner := &Runner{
		Processor: &Processor{
			Fetcher:     o.Fetcher,
			Extractor:   o.Extractor,
			MaxAttempts: o.MaxAttempts,
			BaseDelay:   o.BaseDelay,
			Logger:      logger,
		},
		Concurrency:   o.Concurrency,
		DispatchDelay: o.DispatchDelay,
		RateLimiter:   o.RateLimiter,
		Logger:        logger,
	}

	var indexErr error
	for record := range runner.Run(ctx, scheduler) {
		if record.Failed() {
			result.Failed++
			logger.Warn("page failed", "url", record.URL, "err", record.Err)
			continue
		}
		result.Succeeded++

		if err := indexer.Add(ctx, record); err != nil {
			// The batch is gone; keep crawling so the per-URL
			// outcome stays complete, and report the loss once.
			if indexErr == nil {
				indexErr = err
			}
		}
	}

	// Flush the remainder even when the run was canceled.
	flushErr := indexer.FlushFinal(context.WithoutCancel(ctx))
	if pending := indexer.Pending(); pending > 0 {
		logger.Error("unflushed records after final flush", "pending", pending)
	}

	var cancelErr error
	if err := ctx.Err(); err != nil {
		cancelErr = webindex.Errorf(webindex.ECANCELED, "crawl canceled: %v", err)
	}

	result.Indexed = indexer.Indexed()
	result.Duration = time.Since(start)
	logger.Info("crawl finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"indexed", result.Indexed,
		"duration", result.Duration,
	)

	return result, errors.Join(indexErr, flushErr, cancelErr)
}

// RunSitemap discovers page URLs from the site's sitemap tree and crawls
// them. The filter, if non-nil, restricts which discovered URLs are crawled.
func (o *Orchestrator) RunSitemap(ctx context.Context, source, baseURL string, filter *webindex.URLFilter) (*webindex.CrawlResult, error) {
	if o.Sitemaps == nil {
		return nil, webindex.Errorf(webindex.EINVALID, "no sitemap service configured")
	}

	urls, err := o.Sitemaps.DiscoverURLs(ctx, baseURL, filter)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, webindex.Errorf(webindex.ENOTFOUND, "no URLs discovered from sitemap at %s", baseURL)
	}

	return o.RunCrawl(ctx, source, urls)
}
