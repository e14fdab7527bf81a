package urlexpand

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// shorturl.at serves an interstitial whose destination lives in a
// hidden input field, so this one gets a real DOM lookup instead of a
// regex.
func (e *Expander) resolveShortURL(ctx context.Context, givenURL string, timeout time.Duration) (string, error) {
	body, pageURL, err := e.fetchPage(ctx, givenURL, timeout, checkRedirect)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrExtraction, err)
	}

	target, ok := doc.Find("input#destination").Attr("value")
	if !ok || target == "" {
		return "", fmt.Errorf("%w: no destination field on %s", ErrExtraction, pageURL.Hostname())
	}
	return resolveTarget(pageURL, target)
}
