package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webindex"
)

// Ensure LoggingIndexStore implements webindex.IndexStore.
var _ webindex.IndexStore = (*LoggingIndexStore)(nil)

// LoggingIndexStore wraps an IndexStore with debug logging.
type LoggingIndexStore struct {
	next   webindex.IndexStore
	logger *slog.Logger
}

// NewLoggingIndexStore creates a new LoggingIndexStore.
func NewLoggingIndexStore(next webindex.IndexStore, logger *slog.Logger) *LoggingIndexStore {
	return &LoggingIndexStore{next: next, logger: logger}
}

// Upsert logs the batch size and outcome and delegates to the wrapped store.
func (s *LoggingIndexStore) Upsert(ctx context.Context, docs []webindex.IndexDocument) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("index upsert",
			"docs", len(docs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Upsert(ctx, docs)
}
