package crawl_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/webindex"
	"github.com/fwojciec/webindex/crawl"
	"github.com/fwojciec/webindex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// processorFunc adapts a function to the TargetProcessor interface.
type processorFunc func(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error)

func (f processorFunc) Process(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error) {
	return f(ctx, target)
}

func seededScheduler(t *testing.T, n int) *crawl.Scheduler {
	t.Helper()
	s := crawl.NewScheduler("docs")
	for i := range n {
		require.True(t, s.Offer(fmt.Sprintf("https://example.com/page/%d", i), "", 0))
	}
	return s
}

func TestRunner_Run_emits_one_record_per_target(t *testing.T) {
	t.Parallel()

	const total = 20

	runner := &crawl.Runner{
		Processor: processorFunc(func(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error) {
			return &webindex.PageRecord{URL: target.URL, Source: target.Source}, nil
		}),
		DispatchDelay: time.Microsecond,
	}

	seen := make(map[string]bool)
	for record := range runner.Run(context.Background(), seededScheduler(t, total)) {
		assert.False(t, seen[record.URL], "record %s emitted twice", record.URL)
		seen[record.URL] = true
	}
	assert.Len(t, seen, total)
}

func TestRunner_Run_respects_concurrency_limit(t *testing.T) {
	t.Parallel()

	const limit = 3

	var inflight, peak atomic.Int32
	runner := &crawl.Runner{
		Concurrency:   limit,
		DispatchDelay: time.Microsecond,
		Processor: processorFunc(func(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error) {
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			return &webindex.PageRecord{URL: target.URL, Source: target.Source}, nil
		}),
	}

	count := 0
	for range runner.Run(context.Background(), seededScheduler(t, 30)) {
		count++
	}

	assert.Equal(t, 30, count)
	assert.LessOrEqual(t, peak.Load(), int32(limit), "in-flight fetches exceeded the bound")
}

func TestRunner_Run_failed_targets_do_not_abort_the_run(t *testing.T) {
	t.Parallel()

	runner := &crawl.Runner{
		DispatchDelay: time.Microsecond,
		Processor: processorFunc(func(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error) {
			record := &webindex.PageRecord{URL: target.URL, Source: target.Source}
			if target.Depth == 0 {
				record.Err = "fetch failed"
			}
			return record, nil
		}),
	}

	s := crawl.NewScheduler("docs")
	require.True(t, s.Offer("https://example.com/bad", "", 0))
	require.True(t, s.Offer("https://example.com/good", "", 1))

	var failed, succeeded int
	for record := range runner.Run(context.Background(), s) {
		if record.Failed() {
			failed++
		} else {
			succeeded++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, succeeded)
}

func TestRunner_Run_stops_dequeuing_after_cancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	var processed atomic.Int32
	runner := &crawl.Runner{
		Concurrency:   1,
		DispatchDelay: time.Microsecond,
		Processor: processorFunc(func(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error) {
			if processed.Add(1) == 2 {
				cancel()
				return nil, webindex.Errorf(webindex.ECANCELED, "crawl canceled")
			}
			return &webindex.PageRecord{URL: target.URL, Source: target.Source}, nil
		}),
	}

	count := 0
	for range runner.Run(ctx, seededScheduler(t, 50)) {
		count++
	}

	assert.Equal(t, 1, count, "only the pre-cancellation record is emitted")
	assert.Less(t, processed.Load(), int32(50), "queue should not be drained after cancellation")
}

func TestRunner_Run_waits_for_domain_limiter(t *testing.T) {
	t.Parallel()

	var waited atomic.Int32
	limiter := &mock.DomainLimiter{WaitFn: func(ctx context.Context, domain string) error {
		assert.Equal(t, "example.com", domain)
		waited.Add(1)
		return nil
	}}

	runner := &crawl.Runner{
		DispatchDelay: time.Microsecond,
		RateLimiter:   limiter,
		Processor: processorFunc(func(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error) {
			return &webindex.PageRecord{URL: target.URL, Source: target.Source}, nil
		}),
	}

	count := 0
	for range runner.Run(context.Background(), seededScheduler(t, 5)) {
		count++
	}

	assert.Equal(t, 5, count)
	assert.Equal(t, int32(5), waited.Load())
}
