// Command webindex crawls websites and writes the extracted content into a
// search index, either a remote index service or a local SQLite database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webindex"
	"github.com/fwojciec/webindex/crawl"
	"github.com/fwojciec/webindex/goquery"
	"github.com/fwojciec/webindex/htmltomarkdown"
	webindexhttp "github.com/fwojciec/webindex/http"
	"github.com/fwojciec/webindex/rod"
	webindexslog "github.com/fwojciec/webindex/slog"
	"github.com/fwojciec/webindex/sqlite"
	"github.com/fwojciec/webindex/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Local database path, used when no remote index URL is configured.
	// Set before calling Run().
	DBPath string

	// SQLite database backing the local index store.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webindex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webindex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	sitemaps := webindexslog.NewLoggingSitemapService(webindexhttp.NewSitemapService(nil), logger)
	deps.Sitemaps = sitemaps

	// A local SQLite store backs everything unless a remote index service
	// is configured. The docs and delete commands always use the local DB.
	var store webindex.IndexStore
	if cli.IndexURL != "" {
		store = webindexhttp.NewIndexStore(cli.IndexURL, webindexhttp.WithAPIKey(cli.APIKey))
	} else {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set WEBINDEX_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()

		deps.DB = m.DB
		deps.Local = sqlite.NewIndexStore(m.DB)
		store = deps.Local
	}

	switch cmd {
	case "crawl":
		service, cleanup, err := m.buildService(store, sitemaps, logger, stderr, pipelineConfig{
			Browser:     cli.Crawl.Browser,
			Readability: cli.Crawl.Readability,
			Markdown:    cli.Crawl.Markdown,
			Concurrency: cli.Crawl.Concurrency,
			Attempts:    cli.Crawl.Attempts,
			Timeout:     cli.Crawl.Timeout,
			UserAgent:   cli.Crawl.UserAgent,
			BatchSize:   cli.Crawl.BatchSize,
			Rate:        cli.Crawl.Rate,
		})
		if err != nil {
			return err
		}
		defer cleanup()
		deps.Service = service

	case "sitemap":
		if !cli.Sitemap.Preview {
			service, cleanup, err := m.buildService(store, sitemaps, logger, stderr, pipelineConfig{
				Browser:     cli.Sitemap.Browser,
				Readability: cli.Sitemap.Readability,
				Markdown:    cli.Sitemap.Markdown,
				Concurrency: cli.Sitemap.Concurrency,
				Attempts:    cli.Sitemap.Attempts,
				Timeout:     cli.Sitemap.Timeout,
				UserAgent:   cli.Sitemap.UserAgent,
				BatchSize:   cli.Sitemap.BatchSize,
				Rate:        cli.Sitemap.Rate,
			})
			if err != nil {
				return err
			}
			defer cleanup()
			deps.Service = service
		}

	case "serve":
		service, cleanup, err := m.buildService(store, sitemaps, logger, stderr, pipelineConfig{
			Browser:     cli.Serve.Browser,
			Readability: cli.Serve.Readability,
			Markdown:    cli.Serve.Markdown,
			Timeout:     cli.Serve.Timeout,
			UserAgent:   cli.Serve.UserAgent,
			Rate:        cli.Serve.Rate,
		})
		if err != nil {
			return err
		}
		defer cleanup()
		deps.Service = service
	}

	return kongCtx.Run(deps)
}

// pipelineConfig carries the per-command crawl pipeline settings.
type pipelineConfig struct {
	Browser     bool
	Readability bool
	Markdown    bool
	Concurrency int
	Attempts    int
	Timeout     time.Duration
	UserAgent   string
	BatchSize   int
	Rate        float64
}

// buildService wires a crawl orchestrator from the configured fetcher,
// extractor, converter, and store. The returned cleanup releases fetcher
// resources and must be called once the service is no longer needed.
func (m *Main) buildService(store webindex.IndexStore, sitemaps webindex.SitemapService, logger *slog.Logger, stderr io.Writer, cfg pipelineConfig) (webindex.CrawlService, func(), error) {
	var fetcher webindex.Fetcher
	if cfg.Browser {
		var opts []rod.FetcherOption
		if cfg.Timeout > 0 {
			opts = append(opts, rod.WithFetchTimeout(cfg.Timeout))
		}
		rodFetcher, err := rod.NewFetcher(opts...)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = rodFetcher
	} else {
		var opts []webindexhttp.Option
		if cfg.Timeout > 0 {
			opts = append(opts, webindexhttp.WithTimeout(cfg.Timeout))
		}
		if cfg.UserAgent != "" {
			opts = append(opts, webindexhttp.WithUserAgent(cfg.UserAgent))
		}
		fetcher = webindexhttp.NewFetcher(opts...)
	}
	fetcher = webindexslog.NewLoggingFetcher(fetcher, logger)
	cleanup := func() { _ = fetcher.Close() }

	var extractor webindex.Extractor
	if cfg.Readability {
		extractor = trafilatura.NewExtractor(trafilatura.WithLogger(logger))
	} else {
		extractor = goquery.NewExtractor(goquery.WithLogger(logger))
	}

	var converter webindex.Converter
	if cfg.Markdown {
		converter = htmltomarkdown.NewConverter()
	}

	var limiter webindex.DomainLimiter
	if cfg.Rate > 0 {
		limiter = crawl.NewDomainLimiter(cfg.Rate)
	}

	service := &crawl.Orchestrator{
		Fetcher:     fetcher,
		Extractor:   extractor,
		Store:       webindexslog.NewLoggingIndexStore(store, logger),
		Converter:   converter,
		Sitemaps:    sitemaps,
		RateLimiter: limiter,
		Concurrency: cfg.Concurrency,
		MaxAttempts: cfg.Attempts,
		BatchSize:   cfg.BatchSize,
		Logger:      logger,
	}

	return service, cleanup, nil
}

func defaultDBPath() string {
	if path := os.Getenv("WEBINDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "webindex.db"
	}
	dir := filepath.Join(home, ".webindex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "webindex.db")
}
