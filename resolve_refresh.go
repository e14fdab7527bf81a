package urlexpand

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Naive regexes beat a full HTML parse here: shortener refresh pages
// are tiny and machine-generated, and a strict pattern means markup
// drift surfaces as ErrExtraction instead of a wrong answer.
//
// https://regex101.com/r/fVcveA
var (
	metaRefreshTagRegex = regexp.MustCompile(`(?i)<meta[^>]+http-equiv\s*=\s*["']?refresh["']?[^>]*>`)
	metaContentRegex    = regexp.MustCompile(`(?i)content\s*=\s*["']([^"']+)["']`)
	refreshTargetRegex  = regexp.MustCompile(`(?i)^\s*\d+\s*;\s*url\s*=\s*['"]?([^'"]+)`)
)

// resolveRefresh fetches the page without following redirects and
// extracts the target of its meta refresh directive. Not following
// redirects is deliberate: for these services a 3xx leads to an ad
// page, while the refresh tag carries the real destination.
func (e *Expander) resolveRefresh(ctx context.Context, givenURL string, timeout time.Duration) (string, error) {
	body, pageURL, err := e.fetchPage(ctx, givenURL, timeout, nil)
	if err != nil {
		return "", err
	}

	target, ok := findRefreshTarget(body)
	if !ok {
		return "", fmt.Errorf("%w: no meta refresh target on %s", ErrExtraction, pageURL.Hostname())
	}
	return resolveTarget(pageURL, target)
}

// findRefreshTarget scans markup for a meta refresh tag and pulls the
// URL argument out of its content attribute.
func findRefreshTarget(body []byte) (string, bool) {
	tag := metaRefreshTagRegex.Find(body)
	if tag == nil {
		return "", false
	}
	cm := metaContentRegex.FindSubmatch(tag)
	if len(cm) < 2 {
		return "", false
	}
	tm := refreshTargetRegex.FindStringSubmatch(html.UnescapeString(string(cm[1])))
	if len(tm) < 2 {
		return "", false
	}
	return strings.TrimSpace(tm[1]), true
}

// resolveTarget parses an extracted destination, resolving relative
// targets against the page they were extracted from.
func resolveTarget(pageURL *url.URL, target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: bad destination %q", ErrExtraction, target)
	}
	return Canonicalize(pageURL.ResolveReference(u)), nil
}
