package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webindex"
)

// Retry policy defaults.
const (
	// DefaultMaxAttempts is the total number of fetch attempts per URL.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay scales the linear backoff between attempts:
	// the wait before attempt n+1 is BaseDelay * n.
	DefaultBaseDelay = 1 * time.Second
)

// Processor drives one CrawlTarget through fetch and extraction with
// bounded retries. All failures are retried uniformly up to MaxAttempts;
// 4xx responses are unlikely to recover but the retry budget is small
// enough that special-casing them has not been worth it.
type Processor struct {
	Fetcher   webindex.Fetcher
	Extractor webindex.Extractor

	// MaxAttempts is the total attempt count. Defaults to DefaultMaxAttempts.
	MaxAttempts int

	// BaseDelay is the linear backoff unit. Defaults to DefaultBaseDelay.
	BaseDelay time.Duration

	Logger *slog.Logger
}

// Process fetches and extracts one target. The returned record is terminal:
// on success it carries the extracted content, on exhaustion it carries the
// last failure's message and empty content fields. Either way the crawl run
// continues.
//
// A non-nil error is returned only for cancellation, which aborts
// immediately without consuming the remaining retry budget.
func (p *Processor) Process(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	baseDelay := p.BaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, webindex.Errorf(webindex.ECANCELED, "crawl canceled: %v", err)
		}

		target.Attempts = attempt

		html, finalURL, err := p.Fetcher.Fetch(ctx, target.URL)
		if err == nil {
			return p.extract(target, html, finalURL, logger), nil
		}
		lastErr = err

		// Cancellation surfaces as a fetch error; keep it distinct
		// from retry exhaustion.
		if ctx.Err() != nil {
			return nil, webindex.Errorf(webindex.ECANCELED, "crawl canceled: %v", ctx.Err())
		}

		if attempt >= maxAttempts {
			break
		}

		delay := baseDelay * time.Duration(attempt)
		logger.Debug("fetch retry",
			"url", target.URL,
			"attempt", attempt,
			"delay", delay,
			"err", err,
		)

		select {
		case <-ctx.Done():
			return nil, webindex.Errorf(webindex.ECANCELED, "crawl canceled: %v", ctx.Err())
		case <-time.After(delay):
		}
	}

	logger.Warn("fetch attempts exhausted",
		"url", target.URL,
		"attempts", maxAttempts,
		"err", lastErr,
	)
	return &webindex.PageRecord{
		URL:    target.URL,
		Source: target.Source,
		Err:    lastErr.Error(),
	}, nil
}

// extract turns fetched markup into a record. Extraction failures are
// recovered locally: the record keeps empty content fields and the run
// continues, because malformed markup gains nothing from a refetch.
func (p *Processor) extract(target webindex.CrawlTarget, html, finalURL string, logger *slog.Logger) *webindex.PageRecord {
	record := &webindex.PageRecord{
		URL:       target.URL,
		FinalURL:  finalURL,
		Source:    target.Source,
		FetchedAt: time.Now().UTC(),
	}

	extracted, err := p.Extractor.Extract(html)
	if err != nil {
		logger.Warn("extraction failed, indexing empty content",
			"url", target.URL,
			"err", err,
		)
		return record
	}

	record.Title = extracted.Title
	record.Text = extracted.Text
	record.ContentHTML = extracted.ContentHTML
	record.MetaTags = extracted.MetaTags
	return record
}
