// Package rod provides a Fetcher backed by headless Chrome for pages that
// require JavaScript rendering.
package rod

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/webindex"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements webindex.Fetcher at compile time.
var _ webindex.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the per-fetch deadline. Defaults to
// DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// The browser is recycled periodically to bound memory growth. Close must be
// called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML along with the
// final URL after client and server redirects.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if f.manager.Closed() {
		return "", "", webindex.Errorf(webindex.EINVALID, "fetcher is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", "", fetchError(url, err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", "", fetchError(url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return "", "", fetchError(url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", "", fetchError(url, err)
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	f.manager.IncrementPageCount()
	return html, finalURL, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the browser launcher's process ID. Exposed for
// lifecycle tests.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// fetchError classifies a browser failure for the retry policy. Deadline
// expiry counts as a timeout; everything else as a network-level failure
// since the browser does not surface HTTP status codes here.
func fetchError(url string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	kind := webindex.FetchNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = webindex.FetchTimeout
	}
	return &webindex.FetchError{Kind: kind, URL: url, Err: err}
}
