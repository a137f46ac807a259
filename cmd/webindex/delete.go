package main

import (
	"fmt"

	"github.com/fwojciec/webindex"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if deps.Local == nil {
		return webindex.Errorf(webindex.EINVALID, "delete requires the local index; unset --index-url")
	}

	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return webindex.Errorf(webindex.EINVALID, "use --force to confirm deletion")
	}

	n, err := deps.Local.DeleteDocumentsBySource(deps.Ctx, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webindex.ErrorMessage(err))
		return err
	}

	if n == 0 {
		fmt.Fprintf(deps.Stderr, "error: no documents found for source %q\n", c.Source)
		return webindex.Errorf(webindex.ENOTFOUND, "no documents found for source %q", c.Source)
	}

	fmt.Fprintf(deps.Stdout, "Deleted %d documents for source %q\n", n, c.Source)
	return nil
}
