package urlexpand

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		given string
		want  string
	}{
		// Tracking params are stripped, other params survive.
		{
			given: "https://example.com/path?utm_source=foo&utm_medium=bar&id=1",
			want:  "https://example.com/path?id=1",
		},
		{
			given: "https://example.com/?gclid=x&fbclid=y&mc_eid=z",
			want:  "https://example.com/",
		},

		// Params come out sorted by key.
		{
			given: "https://example.com/?c=3&a=1&b=2",
			want:  "https://example.com/?a=1&b=2&c=3",
		},

		// Host case, default ports, duplicate slashes.
		{
			given: "https://EXAMPLE.com/Path",
			want:  "https://example.com/Path",
		},
		{
			given: "http://example.com:80/a//b",
			want:  "http://example.com/a/b",
		},

		// Fragments are kept.
		{
			given: "https://example.com/doc#section-2",
			want:  "https://example.com/doc#section-2",
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.given, func(t *testing.T) {
			t.Parallel()
			u, err := url.Parse(tc.given)
			require.NoError(t, err)
			assert.Equal(t, tc.want, Canonicalize(u))
		})
	}
}
