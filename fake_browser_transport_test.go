package urlexpand

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeBrowserHeadersAreInjected(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := &http.Client{
		Transport: &fakeBrowserTransport{transport: http.DefaultTransport},
	}
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	for key, value := range fakeBrowserHeaders {
		assert.Equal(t, value, got.Get(key))
	}
}

func TestFakeBrowserHeadersDoNotClobber(t *testing.T) {
	t.Parallel()

	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	req, err := http.NewRequest("GET", srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom-agent/1.0")

	client := &http.Client{
		Transport: &fakeBrowserTransport{transport: http.DefaultTransport},
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	// An explicitly set header takes precedence over the browser mask.
	assert.Equal(t, "custom-agent/1.0", got.Get("User-Agent"))
	assert.Equal(t, fakeBrowserHeaders["Accept"], got.Get("Accept"))
}
