package webindex_test

import (
	"testing"

	"github.com/fwojciec/webindex"
	"github.com/stretchr/testify/assert"
)

func TestDocumentKey_StableForSameURL(t *testing.T) {
	t.Parallel()

	a := webindex.DocumentKey("https://example.com/docs")
	b := webindex.DocumentKey("https://example.com/docs")

	assert.Equal(t, a, b, "same URL must produce the same document key")
	assert.Len(t, a, 16, "key is a hex-encoded 64-bit hash")
}

func TestDocumentKey_DiffersAcrossURLs(t *testing.T) {
	t.Parallel()

	a := webindex.DocumentKey("https://example.com/docs")
	b := webindex.DocumentKey("https://example.com/docs/intro")

	assert.NotEqual(t, a, b)
}
