package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/webindex"
	"github.com/fwojciec/webindex/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	DB       *sqlite.DB
	Local    *sqlite.IndexStore
	Sitemaps webindex.SitemapService
	Service  webindex.CrawlService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	IndexURL string `name:"index-url" env:"WEBINDEX_INDEX_URL" help:"Remote index service URL. When empty, documents are stored in a local SQLite database."`
	APIKey   string `name:"api-key" env:"WEBINDEX_API_KEY" help:"Bearer token for the remote index service"`

	Crawl   CrawlCmd   `cmd:"" help:"Crawl URLs and index the extracted content"`
	Sitemap SitemapCmd `cmd:"" help:"Discover URLs from a site's sitemaps and crawl them"`
	Serve   ServeCmd   `cmd:"" help:"Run the crawl HTTP server"`
	Docs    DocsCmd    `cmd:"" help:"List locally indexed documents for a source"`
	Delete  DeleteCmd  `cmd:"" help:"Delete locally indexed documents for a source"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Source string   `arg:"" help:"Source label for the crawl run"`
	URLs   []string `arg:"" help:"URLs to crawl"`

	Browser     bool          `short:"b" help:"Render pages in headless Chrome instead of plain HTTP"`
	Readability bool          `short:"r" help:"Use the boilerplate-stripping extractor"`
	Markdown    bool          `short:"m" help:"Store a markdown rendition alongside the text"`
	Concurrency int           `short:"c" default:"3" help:"Concurrent fetch limit"`
	Attempts    int           `short:"a" default:"3" help:"Fetch attempts per URL"`
	Timeout     time.Duration `default:"10s" help:"Per-request fetch timeout"`
	UserAgent   string        `name:"user-agent" help:"User-Agent header sent with fetches"`
	BatchSize   int           `default:"25" help:"Index flush batch size"`
	Rate        float64       `default:"1" help:"Max requests per second per domain (0 disables)"`
}

// SitemapCmd is the "sitemap" subcommand.
type SitemapCmd struct {
	Source  string `arg:"" help:"Source label for the crawl run"`
	BaseURL string `arg:"" name:"url" help:"Site URL whose sitemaps to discover"`

	Preview bool     `short:"p" help:"Show discovered URLs without crawling"`
	Filter  []string `short:"F" name:"filter" help:"Only crawl URLs matching regex (repeatable)"`
	Exclude []string `short:"X" name:"exclude" help:"Skip URLs matching regex (repeatable)"`

	Browser     bool          `short:"b" help:"Render pages in headless Chrome instead of plain HTTP"`
	Readability bool          `short:"r" help:"Use the boilerplate-stripping extractor"`
	Markdown    bool          `short:"m" help:"Store a markdown rendition alongside the text"`
	Concurrency int           `short:"c" default:"3" help:"Concurrent fetch limit"`
	Attempts    int           `short:"a" default:"3" help:"Fetch attempts per URL"`
	Timeout     time.Duration `default:"10s" help:"Per-request fetch timeout"`
	UserAgent   string        `name:"user-agent" help:"User-Agent header sent with fetches"`
	BatchSize   int           `default:"25" help:"Index flush batch size"`
	Rate        float64       `default:"1" help:"Max requests per second per domain (0 disables)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:"localhost:8080" help:"Address to listen on"`

	Browser     bool          `short:"b" help:"Render pages in headless Chrome instead of plain HTTP"`
	Readability bool          `short:"r" help:"Use the boilerplate-stripping extractor"`
	Markdown    bool          `short:"m" help:"Store a markdown rendition alongside the text"`
	Timeout     time.Duration `default:"10s" help:"Per-request fetch timeout"`
	UserAgent   string        `name:"user-agent" help:"User-Agent header sent with fetches"`
	Rate        float64       `default:"1" help:"Max requests per second per domain (0 disables)"`
}

// DocsCmd is the "docs" subcommand.
type DocsCmd struct {
	Source string `arg:"" help:"Source label"`
	Limit  int    `short:"n" default:"50" help:"Max documents to list"`
	Full   bool   `help:"Show full document content"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Source string `arg:"" help:"Source label"`
	Force  bool   `help:"Confirm deletion"`
}
