package urlexpand

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// The refresh pages these tests serve come back compressed or in a
// legacy charset; extraction must still find the target, which proves
// readBody reversed the transfer encoding before parsing.

const refreshPage = `<html><head><title>go on thén</title><meta http-equiv="refresh" content="0; url=https://example.org/dest"></head></html>`

func TestBodyDecoding(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		serve func(w http.ResponseWriter) error
	}{
		{
			name: "gzip",
			serve: func(w http.ResponseWriter) error {
				w.Header().Set("Content-Encoding", "gzip")
				gw := gzip.NewWriter(w)
				if _, err := gw.Write([]byte(refreshPage)); err != nil {
					return err
				}
				return gw.Close()
			},
		},
		{
			name: "brotli",
			serve: func(w http.ResponseWriter) error {
				w.Header().Set("Content-Encoding", "br")
				bw := brotli.NewWriter(w)
				if _, err := bw.Write([]byte(refreshPage)); err != nil {
					return err
				}
				return bw.Close()
			},
		},
		{
			name: "windows-1252 charset",
			serve: func(w http.ResponseWriter) error {
				w.Header().Set("Content-Type", "text/html; charset=windows-1252")
				body, err := charmap.Windows1252.NewEncoder().Bytes([]byte(refreshPage))
				if err != nil {
					return err
				}
				_, err = w.Write(body)
				return err
			},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestExpander(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.NoError(t, tc.serve(w))
			}), 10*time.Second)

			result, err := e.Expand(context.Background(), "https://cutt.us/encoded")
			require.NoError(t, err)
			assert.Equal(t, "https://example.org/dest", result.ResolvedURL)
		})
	}
}

func TestReadBodyBadEncoding(t *testing.T) {
	t.Parallel()

	e := New(nil, 0)

	resp := &http.Response{
		Header: http.Header{"Content-Encoding": []string{"gzip"}},
		Body:   io.NopCloser(bytes.NewReader([]byte("definitely not gzip"))),
	}
	_, err := e.readBody(resp)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}
