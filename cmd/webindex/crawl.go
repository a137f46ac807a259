package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/webindex"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	result, err := deps.Service.RunCrawl(deps.Ctx, c.Source, c.URLs)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webindex.ErrorMessage(err))
		return err
	}

	printResult(deps.Stdout, result)
	return nil
}

func printResult(w io.Writer, result *webindex.CrawlResult) {
	fmt.Fprintf(w, "Run %s (%s) finished in %s\n", result.RunID, result.Source, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  indexed   %d\n", result.Indexed)
	fmt.Fprintf(w, "  succeeded %d\n", result.Succeeded)
	fmt.Fprintf(w, "  failed    %d\n", result.Failed)
	fmt.Fprintf(w, "  skipped   %d\n", result.Skipped)
}
