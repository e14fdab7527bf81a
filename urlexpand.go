// Package urlexpand determines whether a URL belongs to a known
// link-shortener service and, if so, resolves it to the destination
// the shortener ultimately redirects to.
//
// Different providers use different mechanisms (raw HTTP redirects,
// meta refresh markup, ad-interstitial pages), so resolution is
// dispatched by domain to a per-service strategy rather than blindly
// following redirects.
package urlexpand

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/urlexpand/urlexpand/bufferpool"
)

const (
	defaultTimeout = 10 * time.Second
	maxRedirects   = 10
	maxBodySize    = 500 * 1024 // plenty for any interstitial page
)

// Interface defines the interface for a URL expander.
type Interface interface {
	Expand(ctx context.Context, url string) (Result, error)
}

// Result is the result of expanding a shortened URL.
type Result struct {
	// ResolvedURL is the canonicalized final destination.
	ResolvedURL string

	// Service is the registered shortener domain the given URL matched.
	Service string
}

// Expander expands shortened URLs by dispatching each URL to the
// resolution strategy registered for its service domain.
type Expander struct {
	group     *singleflight.Group
	pool      *bufferpool.BufferPool
	timeout   time.Duration
	transport http.RoundTripper
}

var _ Interface = &Expander{} // Expander implements Interface

// New creates a new Expander that will use the given transport. A zero
// timeout selects a default of 10 seconds; per-call bounds tighter than
// that should come from the caller's context.
func New(transport http.RoundTripper, timeout time.Duration) *Expander {
	if transport == nil {
		transport = http.DefaultTransport
	}

	// Requests through this transport masquerade as a real web browser,
	// which is what keeps interstitial providers serving their real
	// pages instead of a bot wall.
	transport = &fakeBrowserTransport{
		transport: transport,
	}

	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Expander{
		group:     &singleflight.Group{},
		pool:      bufferpool.New(),
		timeout:   timeout,
		transport: transport,
	}
}

// Expand resolves givenURL to its final destination. Concurrent calls
// for the same URL are coalesced into a single resolution.
func (e *Expander) Expand(ctx context.Context, givenURL string) (Result, error) {
	val, err, _ := e.group.Do(givenURL, func() (interface{}, error) {
		return e.expand(ctx, givenURL, e.timeout)
	})
	return val.(Result), err
}

// expand runs one resolution: validate, classify, resolve. Strictly
// linear; a failed strategy is never retried with a different one.
func (e *Expander) expand(ctx context.Context, givenURL string, timeout time.Duration) (Result, error) {
	validated, ok := validate(givenURL)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidInput, givenURL)
	}

	service, ok := whichService(validated.Hostname())
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidInput, givenURL)
	}

	strat, ok := strategyFor(service)
	if !ok {
		// The classifier's domain list is derived from the strategy
		// table, so this means the table itself is broken.
		return Result{}, fmt.Errorf("%w: %s", ErrUnmappedService, service)
	}

	resolved, err := e.resolve(ctx, strat, validated.String(), timeout)
	if err != nil {
		return Result{Service: service}, classifyErr(err)
	}
	return Result{ResolvedURL: resolved, Service: service}, nil
}

// resolve dispatches to the registered strategy. Strategy choice is
// domain-driven, not response-driven: a meta refresh domain is parsed
// for markup even when the response itself is a 3xx.
func (e *Expander) resolve(ctx context.Context, strat strategy, validatedURL string, timeout time.Duration) (string, error) {
	switch strat {
	case strategyRefresh:
		return e.resolveRefresh(ctx, validatedURL, timeout)
	case strategyAdfly:
		return e.resolveAdfly(ctx, validatedURL, timeout)
	case strategyAdfocus:
		return e.resolveAdfocus(ctx, validatedURL, timeout)
	case strategyShortURL:
		return e.resolveShortURL(ctx, validatedURL, timeout)
	default:
		return e.resolveRedirect(ctx, validatedURL, timeout)
	}
}

// httpClient builds the client a strategy uses for one resolution. A
// nil checkRedirect means redirects are not followed and the first
// response's body is what gets parsed. The timeout bounds the entire
// invocation, body read included; zero means no artificial bound.
func (e *Expander) httpClient(timeout time.Duration, checkRedirect func(*http.Request, []*http.Request) error) *http.Client {
	if checkRedirect == nil {
		checkRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	if timeout < 0 {
		timeout = 0
	}
	cookieJar, _ := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	return &http.Client{
		CheckRedirect: checkRedirect,
		Jar:           cookieJar,
		Transport:     e.transport,
		Timeout:       timeout,
	}
}

// validate parses a candidate URL, retrying scheme-less input with an
// https prefix, and confirms it belongs to a registered service.
func validate(givenURL string) (*url.URL, bool) {
	u, err := url.Parse(givenURL)
	if err != nil || u.Host == "" {
		u, err = url.Parse("https://" + givenURL)
		if err != nil || u.Host == "" {
			return nil, false
		}
	}
	if !domainIsShortened(u.Hostname()) {
		return nil, false
	}
	return u, true
}

// IsShortened reports whether givenURL belongs to a known link
// shortener service. Pure classification: no network I/O, never fails.
func IsShortened(givenURL string) bool {
	_, ok := validate(givenURL)
	return ok
}

var (
	defaultExpanderOnce sync.Once
	defaultExpanderInst *Expander
)

func defaultExpander() *Expander {
	defaultExpanderOnce.Do(func() {
		defaultExpanderInst = New(http.DefaultTransport, defaultTimeout)
	})
	return defaultExpanderInst
}

// Unshorten resolves a shortened URL to its final destination. A zero
// timeout means the call is bounded only by ctx and the network. A
// non-shortener URL fails with ErrInvalidInput before any network I/O.
func Unshorten(ctx context.Context, givenURL string, timeout time.Duration) (string, error) {
	result, err := defaultExpander().expand(ctx, givenURL, timeout)
	if err != nil {
		return "", err
	}
	return result.ResolvedURL, nil
}

// UnshortenBlocking is Unshorten for callers without a context. Each
// call owns its own context and tears it down on every exit path.
func UnshortenBlocking(givenURL string, timeout time.Duration) (string, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return Unshorten(ctx, givenURL, timeout)
}
