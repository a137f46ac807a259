package webindex

import (
	"context"
	"net/url"
	"strings"
)

// Scheduler owns the set of URLs seen and the queue of URLs pending for one
// crawl run. It guarantees each unique normalized URL is scheduled at most
// once. Implementations must be safe for concurrent Offer and Next calls.
type Scheduler interface {
	// Offer submits a URL for crawling. It returns true if the URL was
	// accepted (not seen before in this run) and queued.
	Offer(rawURL, parentURL string, depth int) bool

	// Next pops the next target in FIFO order.
	// The bool result is false if the queue is empty.
	Next() (CrawlTarget, bool)

	// Count returns the number of targets pending.
	Count() int

	// Seen returns true if the URL has been offered before, whether or
	// not it has been dequeued yet.
	Seen(rawURL string) bool
}

// DomainLimiter provides per-domain rate limiting for outbound fetches.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// NormalizeURL canonicalizes a URL for deduplication and document keying.
// The scheme and host are lowercased, default ports and fragments are
// dropped, and a trailing slash is stripped from non-root paths. The root
// path itself is elided so "https://x.test" and "https://x.test/" compare
// equal.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Errorf(EINVALID, "unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", Errorf(EINVALID, "URL %q has no host", rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if host, ok := strings.CutSuffix(u.Host, ":80"); ok && u.Scheme == "http" {
		u.Host = host
	}
	if host, ok := strings.CutSuffix(u.Host, ":443"); ok && u.Scheme == "https" {
		u.Host = host
	}

	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String(), nil
}
