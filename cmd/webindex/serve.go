package main

import (
	"fmt"
	"os"
	"os/signal"

	webindexhttp "github.com/fwojciec/webindex/http"
)

// Run executes the serve command. It blocks until interrupted.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := webindexhttp.NewServer()
	server.Addr = c.Addr
	server.Service = deps.Service

	if err := server.Open(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer server.Close()

	fmt.Fprintf(deps.Stdout, "listening on %s\n", server.URL())

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt)
	defer stop()
	<-ctx.Done()

	fmt.Fprintln(deps.Stdout, "shutting down")
	return nil
}
