package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/webindex"
	"golang.org/x/sync/errgroup"
)

// Runner defaults.
const (
	// DefaultConcurrency bounds simultaneous in-flight fetches.
	DefaultConcurrency = 3
	// DefaultDispatchDelay throttles each worker between completing one
	// target and dequeuing the next.
	DefaultDispatchDelay = 100 * time.Millisecond
)

// TargetProcessor processes a single crawl target into a terminal record.
type TargetProcessor interface {
	Process(ctx context.Context, target webindex.CrawlTarget) (*webindex.PageRecord, error)
}

// Runner drives queued targets through a TargetProcessor with a fixed-size
// worker pool. Records are emitted as they complete; completion order does
// not match dequeue order. A failed target never aborts the run.
type Runner struct {
	Processor TargetProcessor

	// Concurrency is the worker pool size. Defaults to DefaultConcurrency.
	Concurrency int

	// DispatchDelay is the pause each worker takes after a completion
	// before dequeuing its next target. Defaults to DefaultDispatchDelay.
	DispatchDelay time.Duration

	// RateLimiter, if set, is consulted per target domain before fetching.
	RateLimiter webindex.DomainLimiter

	Logger *slog.Logger
}

// Run consumes the scheduler until it is empty and streams records on the
// returned channel. The channel is closed once all workers have finished.
// Cancellation stops workers from dequeuing new targets; in-flight attempts
// wind down on their own.
func (r *Runner) Run(ctx context.Context, sched webindex.Scheduler) <-chan *webindex.PageRecord {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	delay := r.DispatchDelay
	if delay <= 0 {
		delay = DefaultDispatchDelay
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := make(chan *webindex.PageRecord)

	go func() {
		defer close(out)

		g, gctx := errgroup.WithContext(ctx)
		for range concurrency {
			g.Go(func() error {
				return r.worker(gctx, sched, out, delay, logger)
			})
		}
		_ = g.Wait()
	}()

	return out
}

// worker dequeues and processes targets until the queue drains or the
// context is canceled. Worker errors are never propagated: returning nil
// keeps one worker's exit from tearing down its siblings via the errgroup.
func (r *Runner) worker(
	ctx context.Context,
	sched webindex.Scheduler,
	out chan<- *webindex.PageRecord,
	delay time.Duration,
	logger *slog.Logger,
) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		target, ok := sched.Next()
		if !ok {
			return nil
		}

		if r.RateLimiter != nil {
			if err := r.RateLimiter.Wait(ctx, domainOf(target.URL)); err != nil {
				return nil
			}
		}

		record, err := r.Processor.Process(ctx, target)
		if err != nil {
			// Cancellation: stop dequeuing, leave the rest of the
			// queue unprocessed.
			logger.Debug("worker stopping", "url", target.URL, "err", err)
			return nil
		}

		select {
		case out <- record:
		case <-ctx.Done():
			return nil
		}

		// Throttle burst rate against the target site before taking
		// the next target.
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

// domainOf extracts the host for rate limiting. Targets come from the
// scheduler already normalized, so parse failures are not expected.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
