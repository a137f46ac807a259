package mock

import (
	"context"

	"github.com/fwojciec/webindex"
)

var _ webindex.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of webindex.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *webindex.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *webindex.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
