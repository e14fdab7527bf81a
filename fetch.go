package urlexpand

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
)

// fetchPage fetches a page for one of the markup-scraping strategies
// and returns its decoded body along with the URL it was served from,
// so relative extraction targets can be resolved against it. A nil
// checkRedirect means redirects are not followed.
func (e *Expander) fetchPage(ctx context.Context, pageURL string, timeout time.Duration, checkRedirect func(*http.Request, []*http.Request) error) ([]byte, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, nil, err
	}

	resp, err := e.httpClient(timeout, checkRedirect).Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := e.readBody(resp)
	if err != nil {
		return nil, nil, err
	}
	return body, resp.Request.URL, nil
}

// readBody reads up to maxBodySize of the response body, reversing any
// content encoding the server applied and converting to utf-8.
func (e *Expander) readBody(resp *http.Response) ([]byte, error) {
	var rd io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		gr, err := gzip.NewReader(rd)
		if err != nil {
			return nil, fmt.Errorf("error initializing gzip: %w", err)
		}
		defer gr.Close()
		rd = gr
	case "deflate":
		fr := flate.NewReader(rd)
		defer fr.Close()
		rd = fr
	case "br":
		rd = brotli.NewReader(rd)
	}

	buf := e.pool.Get()
	defer e.pool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(rd, maxBodySize)); err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	return decodeBody(buf.Bytes(), resp.Header.Get("Content-Type"))
}

func decodeBody(body []byte, contentType string) ([]byte, error) {
	enc, encName, _ := charset.DetermineEncoding(body, contentType)
	if encName == "utf-8" {
		// The backing buffer goes back to the pool, so hand out a copy.
		return append([]byte(nil), body...), nil
	}
	return enc.NewDecoder().Bytes(body)
}
