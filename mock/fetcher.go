// Package mock provides function-field mock implementations of the
// webindex interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/webindex"
)

var _ webindex.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of webindex.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
