package main

import (
	"fmt"

	"github.com/fwojciec/webindex"
	"github.com/fwojciec/webindex/sqlite"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
	if deps.Local == nil {
		return webindex.Errorf(webindex.EINVALID, "docs requires the local index; unset --index-url")
	}

	docs, err := deps.Local.FindDocuments(deps.Ctx, sqlite.DocumentFilter{
		Source: &c.Source,
		Limit:  c.Limit,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webindex.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintf(deps.Stdout, "No documents found for source %q.\n", c.Source)
		return nil
	}

	for _, doc := range docs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", doc.ID, doc.FetchedAt.Format("2006-01-02 15:04"), doc.URL)
		if c.Full {
			fmt.Fprintln(deps.Stdout, doc.Content)
			fmt.Fprintln(deps.Stdout)
		}
	}

	return nil
}
