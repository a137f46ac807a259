package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/webindex"
	"golang.org/x/sync/semaphore"
)

// Batch indexing defaults.
const (
	// DefaultBatchSize is the record count that triggers a flush.
	DefaultBatchSize = 25
	// DefaultMaxFlushAttempts caps rate-limit retries per batch.
	DefaultMaxFlushAttempts = 10
	// DefaultMaxInflightUpserts bounds concurrent upsert calls to the
	// store, independent of crawl concurrency.
	DefaultMaxInflightUpserts = 1
)

// BatchIndexer buffers page records and writes them to an IndexStore in
// bounded-size batches. Add is safe for concurrent producers. Flushes are
// serialized by an exclusive lock around batch draining, so at most one
// flush call is draining at any time; a counting semaphore additionally
// bounds in-flight upsert network calls.
//
// Rate-limited upserts are retried with exponential backoff, keeping the
// batch intact. Any other store failure loses the batch contents; callers
// that need durability must cover the at-most-once risk by re-submitting
// the source URL list.
type BatchIndexer struct {
	store     webindex.IndexStore
	converter webindex.Converter
	logger    *slog.Logger

	batchSize        int
	maxFlushAttempts int
	backoffUnit      time.Duration
	inflight         *semaphore.Weighted

	mu    sync.Mutex // guards batch and indexed
	batch []webindex.IndexDocument

	flushMu sync.Mutex // serializes batch draining

	indexed int
}

// BatchOption configures a BatchIndexer.
type BatchOption func(*BatchIndexer)

// WithBatchSize sets the flush threshold. Defaults to DefaultBatchSize.
func WithBatchSize(n int) BatchOption {
	return func(b *BatchIndexer) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithConverter supplies a Converter used to render each record's content
// fragment to markdown for the index document body.
func WithConverter(c webindex.Converter) BatchOption {
	return func(b *BatchIndexer) {
		b.converter = c
	}
}

// WithMaxFlushAttempts caps rate-limit retries per batch.
// Defaults to DefaultMaxFlushAttempts.
func WithMaxFlushAttempts(n int) BatchOption {
	return func(b *BatchIndexer) {
		if n > 0 {
			b.maxFlushAttempts = n
		}
	}
}

// WithFlushBackoffUnit scales the exponential rate-limit backoff: the wait
// after attempt n is 2^n units. Defaults to one second. Useful for testing
// without waiting for real delays.
func WithFlushBackoffUnit(d time.Duration) BatchOption {
	return func(b *BatchIndexer) {
		if d > 0 {
			b.backoffUnit = d
		}
	}
}

// WithMaxInflightUpserts bounds concurrent upsert calls to the store.
// Defaults to DefaultMaxInflightUpserts.
func WithMaxInflightUpserts(n int64) BatchOption {
	return func(b *BatchIndexer) {
		if n > 0 {
			b.inflight = semaphore.NewWeighted(n)
		}
	}
}

// WithIndexerLogger sets the logger. Defaults to slog.Default.
func WithIndexerLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchIndexer) {
		b.logger = logger
	}
}

// NewBatchIndexer creates a BatchIndexer writing to the given store.
// A BatchIndexer's lifetime is one crawl run.
func NewBatchIndexer(store webindex.IndexStore, opts ...BatchOption) *BatchIndexer {
	b := &BatchIndexer{
		store:            store,
		logger:           slog.Default(),
		batchSize:        DefaultBatchSize,
		maxFlushAttempts: DefaultMaxFlushAttempts,
		backoffUnit:      time.Second,
		inflight:         semaphore.NewWeighted(DefaultMaxInflightUpserts),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add buffers one record and flushes if the batch has reached its size
// threshold. Records that fail validation are rejected with EINVALID.
func (b *BatchIndexer) Add(ctx context.Context, record *webindex.PageRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	doc := webindex.IndexDocument{
		ID:        webindex.DocumentKey(record.URL),
		URL:       record.URL,
		Title:     record.Title,
		Content:   record.Text,
		Source:    record.Source,
		MetaTags:  record.MetaTags,
		FetchedAt: record.FetchedAt,
	}
	if b.converter != nil && record.ContentHTML != "" {
		markdown, err := b.converter.Convert(record.ContentHTML)
		if err != nil {
			// The plain-text content still gets indexed.
			b.logger.Warn("markdown conversion failed", "url", record.URL, "err", err)
		} else {
			doc.ContentMarkdown = markdown
		}
	}

	b.mu.Lock()
	b.batch = append(b.batch, doc)
	full := len(b.batch) >= b.batchSize
	b.mu.Unlock()

	if full {
		return b.Flush(ctx)
	}
	return nil
}

// Flush upserts buffered documents in full batch-size chunks, leaving any
// under-threshold remainder buffered. Concurrent callers serialize on the
// drain lock, so no chunk is ever drained twice and every upsert carries
// exactly the batch size. Flushing an under-threshold buffer is a no-op.
func (b *BatchIndexer) Flush(ctx context.Context) error {
	return b.flush(ctx, false)
}

// FlushFinal flushes everything buffered at end-of-run, including the
// remainder chunk. Callers should verify Pending reports zero afterward;
// residue is a reportable anomaly.
func (b *BatchIndexer) FlushFinal(ctx context.Context) error {
	return b.flush(ctx, true)
}

func (b *BatchIndexer) flush(ctx context.Context, final bool) error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	for {
		b.mu.Lock()
		n := len(b.batch)
		if n == 0 || (!final && n < b.batchSize) {
			b.mu.Unlock()
			return nil
		}
		if n > b.batchSize {
			n = b.batchSize
		}
		docs := b.batch[:n:n]
		b.batch = b.batch[n:]
		b.mu.Unlock()

		if err := b.upsertWithRetry(ctx, docs); err != nil {
			b.logger.Error("batch lost after upsert failure",
				"docs", len(docs),
				"err", err,
			)
			return fmt.Errorf("upsert batch of %d: %w", len(docs), err)
		}

		b.mu.Lock()
		b.indexed += len(docs)
		b.mu.Unlock()

		b.logger.Debug("batch flushed", "docs", len(docs))
	}
}

// Pending returns the number of buffered, unflushed documents.
func (b *BatchIndexer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.batch)
}

// Indexed returns the number of documents accepted by the store so far.
func (b *BatchIndexer) Indexed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexed
}

// upsertWithRetry performs the store call, backing off 2^attempt seconds on
// rate-limit errors up to the attempt cap. Other errors return immediately.
func (b *BatchIndexer) upsertWithRetry(ctx context.Context, docs []webindex.IndexDocument) error {
	var lastErr error
	for attempt := 0; attempt < b.maxFlushAttempts; attempt++ {
		if err := b.inflight.Acquire(ctx, 1); err != nil {
			return err
		}
		err := b.store.Upsert(ctx, docs)
		b.inflight.Release(1)

		if err == nil {
			return nil
		}
		lastErr = err

		if webindex.ErrorCode(err) != webindex.ERATELIMIT {
			return err
		}

		delay := time.Duration(1<<attempt) * b.backoffUnit
		b.logger.Debug("index store rate limited",
			"attempt", attempt+1,
			"delay", delay,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
