package urlexpand

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// AdFocus embeds the destination in a script assignment on the
// interstitial page.
var clickURLRegex = regexp.MustCompile(`click_url\s*=\s*"([^"]+)"`)

func (e *Expander) resolveAdfocus(ctx context.Context, givenURL string, timeout time.Duration) (string, error) {
	body, pageURL, err := e.fetchPage(ctx, givenURL, timeout, checkRedirect)
	if err != nil {
		return "", err
	}

	m := clickURLRegex.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("%w: no click_url on %s", ErrExtraction, pageURL.Hostname())
	}
	return resolveTarget(pageURL, string(m[1]))
}
