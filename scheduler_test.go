package webindex_test

import (
	"testing"

	"github.com/fwojciec/webindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases host", "https://Example.COM/Docs", "https://example.com/Docs"},
		{"strips trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"root slash equals bare host", "https://example.com/", "https://example.com"},
		{"strips fragment", "https://example.com/docs#intro", "https://example.com/docs"},
		{"drops default https port", "https://example.com:443/docs", "https://example.com/docs"},
		{"drops default http port", "http://example.com:80/docs", "http://example.com/docs"},
		{"keeps non-default port", "https://example.com:8443/docs", "https://example.com:8443/docs"},
		{"keeps query", "https://example.com/docs?page=2", "https://example.com/docs?page=2"},
		{"path case preserved", "https://example.com/Docs/API", "https://example.com/Docs/API"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := webindex.NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURL_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "://nope", "ftp://example.com/file", "/relative/path"} {
		_, err := webindex.NormalizeURL(in)
		require.Error(t, err, "input %q", in)
		assert.Equal(t, webindex.EINVALID, webindex.ErrorCode(err))
	}
}
