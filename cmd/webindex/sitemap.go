package main

import (
	"fmt"
	"regexp"

	"github.com/fwojciec/webindex"
)

// Run executes the sitemap command.
func (c *SitemapCmd) Run(deps *Dependencies) error {
	filter, err := compileFilter(c.Filter, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webindex.ErrorMessage(err))
		return err
	}

	// Preview mode: show discovered URLs without crawling.
	if c.Preview {
		urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.BaseURL, filter)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", webindex.ErrorMessage(err))
			return err
		}
		for _, u := range urls {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	result, err := deps.Service.RunSitemap(deps.Ctx, c.Source, c.BaseURL, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webindex.ErrorMessage(err))
		return err
	}

	printResult(deps.Stdout, result)
	return nil
}

// compileFilter validates regex patterns early, before any network work.
func compileFilter(include, exclude []string) (*webindex.URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}

	filter := &webindex.URLFilter{}
	for _, pattern := range include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, webindex.Errorf(webindex.EINVALID, "invalid filter pattern %q: %v", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, webindex.Errorf(webindex.EINVALID, "invalid exclude pattern %q: %v", pattern, err)
		}
		filter.Exclude = append(filter.Exclude, re)
	}
	return filter, nil
}
