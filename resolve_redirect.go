package urlexpand

import (
	"context"
	"net/http"
	"time"
)

// checkRedirect enforces the redirect hop bound. Exceeding it is a
// typed failure rather than silently stopping at the last hop: an
// endless redirect loop is not a resolution.
func checkRedirect(req *http.Request, via []*http.Request) error {
	// via holds the requests already made, so the Nth hop sees N
	// entries: ten hops are allowed, the eleventh fails.
	if len(via) > maxRedirects {
		return ErrRedirectLimit
	}
	return nil
}

// resolveRedirect follows the HTTP redirect chain and returns the URL
// of the final response. Used for both the explicit redirect group and
// the generic fallback.
func (e *Expander) resolveRedirect(ctx context.Context, givenURL string, timeout time.Duration) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", givenURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := e.httpClient(timeout, checkRedirect).Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return Canonicalize(resp.Request.URL), nil
}
