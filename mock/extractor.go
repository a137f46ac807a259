package mock

import "github.com/fwojciec/webindex"

var _ webindex.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of webindex.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*webindex.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*webindex.ExtractResult, error) {
	return e.ExtractFn(html)
}
