package webindex

import (
	"context"
	"time"
)

// CrawlTarget represents a single URL queued for crawling.
type CrawlTarget struct {
	// URL is the address to fetch, as accepted by the Scheduler.
	URL string

	// Source labels the crawl run that produced the target (e.g., a site
	// or tenant name). It is carried through to the index document.
	Source string

	// ParentURL is the sitemap or page the URL was discovered from.
	// Empty for targets submitted directly.
	ParentURL string

	// Depth is the discovery depth. Directly submitted targets have depth 0.
	Depth int

	// Attempts counts fetch attempts made so far. Managed by the
	// retrying processor.
	Attempts int
}

// PageRecord is the outcome of processing one CrawlTarget. It is immutable
// once produced and consumed exactly once by the batch indexer.
type PageRecord struct {
	// URL is the normalized URL the record was produced for.
	URL string

	// FinalURL is the URL after redirects. Equal to URL when no redirect
	// occurred.
	FinalURL string

	// Title is the first <title> element's text, if any.
	Title string

	// Text is the whitespace-normalized main text of the page.
	Text string

	// ContentHTML is the markup fragment the text was extracted from.
	ContentHTML string

	// MetaTags maps meta tag names to their content. Keys are
	// case-insensitive (stored lowercased); later duplicates win.
	MetaTags map[string]string

	// Source carries the crawl run's source label.
	Source string

	// Err holds the terminal failure message for the URL, empty on success.
	Err string

	// FetchedAt is when the successful fetch completed.
	FetchedAt time.Time
}

// Failed reports whether the record represents a terminal failure.
func (r *PageRecord) Failed() bool {
	return r.Err != ""
}

// Validate returns an error if the record cannot be indexed.
func (r *PageRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "page record URL required")
	}
	if r.Source == "" {
		return Errorf(EINVALID, "page record source label required")
	}
	return nil
}

// CrawlResult aggregates the outcome of one crawl run. Counters are owned by
// the run's orchestrator instance; there is no process-wide state.
type CrawlResult struct {
	// RunID identifies the crawl run in logs and responses.
	RunID string `json:"runId"`

	// Source is the label the run was submitted with.
	Source string `json:"source"`

	// Succeeded counts URLs that produced an indexable record.
	Succeeded int `json:"succeeded"`

	// Failed counts URLs that exhausted their retries.
	Failed int `json:"failed"`

	// Skipped counts URLs rejected by deduplication.
	Skipped int `json:"skipped"`

	// Indexed counts records accepted by the index store.
	Indexed int `json:"indexed"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

// CrawlService runs crawl jobs. It is the surface exposed to transports
// (HTTP server, CLI); crawl.Orchestrator is the canonical implementation.
type CrawlService interface {
	// RunCrawl crawls the given URLs under the source label.
	RunCrawl(ctx context.Context, source string, urls []string) (*CrawlResult, error)

	// RunSitemap discovers URLs from the site's sitemaps and crawls them.
	RunSitemap(ctx context.Context, source, baseURL string, filter *URLFilter) (*CrawlResult, error)
}
