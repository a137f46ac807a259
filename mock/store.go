package mock

import (
	"context"

	"github.com/fwojciec/webindex"
)

var _ webindex.IndexStore = (*IndexStore)(nil)

// IndexStore is a mock implementation of webindex.IndexStore.
type IndexStore struct {
	UpsertFn func(ctx context.Context, docs []webindex.IndexDocument) error
}

func (s *IndexStore) Upsert(ctx context.Context, docs []webindex.IndexDocument) error {
	return s.UpsertFn(ctx, docs)
}
