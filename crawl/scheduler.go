package crawl

import (
	"sync"

	"github.com/fwojciec/webindex"
	"github.com/fwojciec/webindex/bloom"
)

// Scheduler sizing for the Bloom pre-filter.
const (
	// schedulerExpectedURLs is the expected number of URLs per run.
	schedulerExpectedURLs = 10000
	// schedulerFalsePositiveRate is the acceptable pre-filter false positive rate.
	schedulerFalsePositiveRate = 0.01
)

// Compile-time interface verification.
var _ webindex.Scheduler = (*Scheduler)(nil)

// Scheduler is an in-memory FIFO crawl queue with exact deduplication.
// A Bloom filter answers the common "never seen" case without touching the
// seen set; positives are confirmed against an exact map so the dedup
// invariant holds regardless of filter collisions.
//
// A Scheduler's lifetime is one crawl run. It is safe for concurrent use
// by multiple goroutines.
type Scheduler struct {
	source string

	mu    sync.Mutex
	fast  *bloom.Filter
	seen  map[string]struct{}
	queue []webindex.CrawlTarget
}

// NewScheduler creates an empty Scheduler for one crawl run. All accepted
// targets carry the given source label.
func NewScheduler(source string) *Scheduler {
	return &Scheduler{
		source: source,
		fast:   bloom.NewFilter(schedulerExpectedURLs, schedulerFalsePositiveRate),
		seen:   make(map[string]struct{}),
	}
}

// Offer submits a URL for crawling. The URL is normalized before the seen
// check, so URLs differing only by host case, fragment, or a trailing slash
// are duplicates. Returns true if the URL was accepted and queued.
// URLs that fail normalization are rejected.
func (s *Scheduler) Offer(rawURL, parentURL string, depth int) bool {
	norm, err := webindex.NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fast.Test(norm) {
		if _, ok := s.seen[norm]; ok {
			return false
		}
	}
	s.fast.Add(norm)
	s.seen[norm] = struct{}{}

	s.queue = append(s.queue, webindex.CrawlTarget{
		URL:       norm,
		Source:    s.source,
		ParentURL: parentURL,
		Depth:     depth,
	})
	return true
}

// Next pops the next target in insertion order.
// The bool result is false if the queue is empty.
func (s *Scheduler) Next() (webindex.CrawlTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return webindex.CrawlTarget{}, false
	}
	target := s.queue[0]
	s.queue = s.queue[1:]
	return target, true
}

// Count returns the number of targets pending.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Seen returns true if the URL has been offered before, whether or not it
// has been dequeued yet.
func (s *Scheduler) Seen(rawURL string) bool {
	norm, err := webindex.NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[norm]
	return ok
}
