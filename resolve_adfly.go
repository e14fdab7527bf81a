package urlexpand

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// AdFly hides the destination in a script variable rather than a
// redirect: the ysmm string is de-interleaved into two halves,
// base64-decoded, and the two-byte prefix dropped.
var ysmmRegex = regexp.MustCompile(`var\s+ysmm\s*=\s*'([^']+)'`)

func (e *Expander) resolveAdfly(ctx context.Context, givenURL string, timeout time.Duration) (string, error) {
	body, pageURL, err := e.fetchPage(ctx, givenURL, timeout, checkRedirect)
	if err != nil {
		return "", err
	}

	m := ysmmRegex.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("%w: no ysmm payload on %s", ErrExtraction, pageURL.Hostname())
	}

	target, err := decodeYsmm(string(m[1]))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrExtraction, err)
	}
	return resolveTarget(pageURL, target)
}

func decodeYsmm(encoded string) (string, error) {
	// Even positions read forward, odd positions read backward.
	var left, right []byte
	for i := 0; i < len(encoded); i++ {
		if i%2 == 0 {
			left = append(left, encoded[i])
		} else {
			right = append([]byte{encoded[i]}, right...)
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(string(left) + string(right))
	if err != nil {
		return "", fmt.Errorf("bad ysmm payload: %w", err)
	}
	if len(decoded) <= 2 {
		return "", errors.New("ysmm payload too short")
	}

	dest := string(decoded[2:])

	// Some campaigns wrap the destination in a dest= query parameter.
	if u, err := url.Parse(dest); err == nil {
		if d := u.Query().Get("dest"); d != "" {
			return d, nil
		}
	}
	return dest, nil
}
