package webindex

// ExtractResult holds the content extracted from an HTML page.
type ExtractResult struct {
	// Title is the text of the first <title> element, if any.
	Title string

	// Text is the rendered main text with whitespace normalized: runs of
	// newlines collapse to a single newline, runs of spaces and tabs to a
	// single space, and the result is trimmed.
	Text string

	// ContentHTML is the markup of the selected content anchor.
	ContentHTML string

	// MetaTags maps meta tag names to content values. The name attribute
	// is preferred, falling back to property; entries with an empty name
	// or content are skipped; later duplicates overwrite earlier ones.
	MetaTags map[string]string
}

// Extractor extracts title, main text, and meta tags from raw HTML.
// Implementations must not fail on malformed markup; they return a
// best-effort empty result instead.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
