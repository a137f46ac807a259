package webindex

import (
	"context"
	"fmt"
)

// Fetcher retrieves raw HTML from URLs.
// Implementations perform exactly one attempt per call; retry policy belongs
// to the caller.
type Fetcher interface {
	// Fetch performs a single GET of the URL and returns the raw markup
	// and the final URL after redirects. The context controls timeout and
	// cancellation. Failures are reported as *FetchError where the cause
	// is known.
	Fetch(ctx context.Context, url string) (html string, finalURL string, err error)

	// Close releases fetcher resources (browser processes, idle
	// connections). Must be called when the Fetcher is no longer needed.
	Close() error
}

// FetchErrorKind classifies a failed fetch attempt.
type FetchErrorKind int

// Fetch failure classes.
const (
	// FetchTimeout indicates the request exceeded its deadline.
	FetchTimeout FetchErrorKind = iota

	// FetchStatus indicates a non-2xx HTTP response; StatusCode is set.
	FetchStatus

	// FetchNetwork indicates a transport-level failure (DNS, reset, TLS).
	FetchNetwork
)

// FetchError describes a single failed fetch attempt.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchTimeout:
		return fmt.Sprintf("fetch %s: timeout", e.URL)
	case FetchStatus:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Unwrap returns the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Temporary reports whether the failure class is expected to be transient
// (timeouts, 5xx responses, network errors). 4xx responses are permanent,
// though the processor currently retries them uniformly; see the retry
// policy documentation.
func (e *FetchError) Temporary() bool {
	if e.Kind == FetchStatus {
		return e.StatusCode >= 500
	}
	return true
}
