package mock

import (
	"context"

	"github.com/fwojciec/webindex"
)

var _ webindex.CrawlService = (*CrawlService)(nil)

// CrawlService is a mock implementation of webindex.CrawlService.
type CrawlService struct {
	RunCrawlFn   func(ctx context.Context, source string, urls []string) (*webindex.CrawlResult, error)
	RunSitemapFn func(ctx context.Context, source, baseURL string, filter *webindex.URLFilter) (*webindex.CrawlResult, error)
}

func (s *CrawlService) RunCrawl(ctx context.Context, source string, urls []string) (*webindex.CrawlResult, error) {
	return s.RunCrawlFn(ctx, source, urls)
}

func (s *CrawlService) RunSitemap(ctx context.Context, source, baseURL string, filter *webindex.URLFilter) (*webindex.CrawlResult, error) {
	return s.RunSitemapFn(ctx, source, baseURL, filter)
}
