package webindex

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
)

// IndexDocument is one entry in the search index. Documents are keyed by ID
// so re-indexing the same URL overwrites the previous version.
type IndexDocument struct {
	// ID is the document key, derived from the normalized URL via
	// DocumentKey. Two records for the same URL always collide here.
	ID string `json:"id"`

	// URL is the normalized page URL.
	URL string `json:"url"`

	Title string `json:"title"`

	// Content is the whitespace-normalized main text used for full-text
	// search.
	Content string `json:"content"`

	// ContentMarkdown is the extracted fragment converted to markdown,
	// kept for display and snippeting. Empty when no converter is wired.
	ContentMarkdown string `json:"contentMarkdown,omitempty"`

	// Source labels the crawl run that produced the document.
	Source string `json:"source"`

	MetaTags map[string]string `json:"metaTags,omitempty"`

	FetchedAt time.Time `json:"fetchedAt"`
}

// IndexStore is the remote document store the pipeline writes into. The
// store is treated as opaque: it accepts batch upserts keyed by document ID.
//
// Upsert errors are classified by ErrorCode: ERATELIMIT means the caller
// should back off and retry the same batch; any other error is fatal for
// the batch.
type IndexStore interface {
	Upsert(ctx context.Context, docs []IndexDocument) error
}

// Enricher augments index documents with derived signals (sentiment,
// entities, language). It exists as an extension point only; the pipeline
// ships no implementation.
type Enricher interface {
	Enrich(ctx context.Context, doc *IndexDocument) error
}

// DocumentKey derives the index document ID for a normalized URL. The key
// is a fixed one-way hash, so re-indexing a URL is idempotent.
func DocumentKey(normalizedURL string) string {
	h := xxhash.Sum64String(normalizedURL)
	b := make([]byte, 8)
	for i := range b {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}
