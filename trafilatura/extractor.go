// Package trafilatura provides a boilerplate-stripping Extractor built on
// go-trafilatura. Compared to the goquery extractor it is better at removing
// navigation, sidebars, and footers from documentation-style pages.
package trafilatura

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/fwojciec/webindex"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements webindex.Extractor at compile time.
var _ webindex.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used to report extraction failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content. Pages that
// trafilatura cannot make sense of yield an empty result rather than an
// error so a single unreadable page does not fail a crawl.
func (e *Extractor) Extract(rawHTML string) (*webindex.ExtractResult, error) {
	empty := &webindex.ExtractResult{MetaTags: map[string]string{}}
	if strings.TrimSpace(rawHTML) == "" {
		return empty, nil
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		e.logger.Warn("content extraction failed", "error", err)
		return empty, nil
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	metaTags := map[string]string{}
	if result.Metadata.Description != "" {
		metaTags["description"] = result.Metadata.Description
	}
	if result.Metadata.Author != "" {
		metaTags["author"] = result.Metadata.Author
	}
	if result.Metadata.Sitename != "" {
		metaTags["og:site_name"] = result.Metadata.Sitename
	}

	return &webindex.ExtractResult{
		Title:       result.Metadata.Title,
		Text:        strings.TrimSpace(result.ContentText),
		ContentHTML: contentHTML,
		MetaTags:    metaTags,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
