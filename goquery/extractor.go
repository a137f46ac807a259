// Package goquery provides a goquery-based implementation of
// webindex.Extractor that extracts title, main text, and meta tags from
// raw HTML.
package goquery

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webindex"
)

// Ensure Extractor implements webindex.Extractor at compile time.
var _ webindex.Extractor = (*Extractor)(nil)

// Extractor extracts page content from raw HTML. It never fails on
// malformed markup; the parser is forgiving and any residual parse failure
// yields a best-effort empty result.
type Extractor struct {
	selector string
	logger   *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithContentSelector overrides the content anchor. By default the first
// <main> element is used when present, falling back to the document body.
func WithContentSelector(selector string) Option {
	return func(e *Extractor) {
		e.selector = selector
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
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

// Extract processes raw HTML and returns title, main text, and meta tags.
//
// Script, style, svg, and path subtrees are removed before text extraction
// since their contents corrupt readable text. The title comes from the
// first <title> element. Meta tags are keyed by the name attribute,
// falling back to property; empty names and contents are skipped and later
// duplicates overwrite earlier ones. Main text is the rendered inner text
// of the content anchor with whitespace normalized.
func (e *Extractor) Extract(rawHTML string) (*webindex.ExtractResult, error) {
	result := &webindex.ExtractResult{
		MetaTags: map[string]string{},
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		e.logger.Warn("unparseable markup, returning empty content", "err", err)
		return result, nil
	}

	doc.Find("script, style, svg, path").Remove()

	result.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("name")
		if !ok || name == "" {
			name, _ = sel.Attr("property")
		}
		content, _ := sel.Attr("content")
		if name == "" || content == "" {
			return
		}
		result.MetaTags[strings.ToLower(name)] = content
	})

	content := e.contentSelection(doc)
	if content.Length() == 0 {
		return result, nil
	}

	if html, err := content.Html(); err == nil {
		result.ContentHTML = html
	} else {
		e.logger.Warn("content fragment rendering failed", "err", err)
	}
	result.Text = normalizeWhitespace(content.Text())

	return result, nil
}

func (e *Extractor) contentSelection(doc *goquery.Document) *goquery.Selection {
	if e.selector != "" {
		return doc.Find(e.selector).First()
	}
	if main := doc.Find("main").First(); main.Length() > 0 {
		return main
	}
	return doc.Find("body").First()
}

var (
	newlineRuns = regexp.MustCompile(`[ \t]*[\r\n]+[ \t\r\n]*`)
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
)

// normalizeWhitespace collapses runs of newlines to a single newline and
// runs of spaces and tabs to a single space, then trims the ends.
func normalizeWhitespace(s string) string {
	s = newlineRuns.ReplaceAllString(s, "\n")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
