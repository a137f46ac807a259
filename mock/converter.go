package mock

import "github.com/fwojciec/webindex"

var _ webindex.Converter = (*Converter)(nil)

// Converter is a mock implementation of webindex.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
