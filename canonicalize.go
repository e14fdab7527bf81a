package urlexpand

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// NormalizationFlags defines the normalization flags the purell package
// will use during canonicalization.
//
// See https://godoc.org/github.com/PuerkitoBio/purell#NormalizationFlags
var NormalizationFlags = (purell.FlagsSafe |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagDecodeDWORDHost |
	purell.FlagDecodeOctalHost |
	purell.FlagDecodeHexHost |
	purell.FlagRemoveUnnecessaryHostDots |
	purell.FlagRemoveEmptyPortSeparator)

// Query parameters matching these patterns are tracking noise added by
// the shortener or its campaign and are ALWAYS stripped from resolved
// destinations. Largely sourced from:
//
// https://github.com/newhouse/url-tracking-stripper/blob/dea6c144/README.md#documentation
var excludeParamPattern = listToRegexp(`(?i)^(`, `)$`, []string{
	// Google's Urchin Tracking Module & Google Adwords
	`utm_.+`,
	`gclid`,

	// Adobe Omniture SiteCatalyst
	`icid`,

	// Facebook
	`fbclid`,

	// Hubspot
	`_hsenc`,
	`_hsmi`,

	// Marketo
	`mkt_.+`,

	// MailChimp
	`mc_.+`,

	// Simple Reach
	`sr_.+`,

	// Vero
	`vero_.+`,

	// Unknown
	`nr_email_referer`,
	`ncid`,
})

// Canonicalize strips tracking params and then normalizes a URL,
// ensuring consistent case, encoding, sorting of params, etc.
func Canonicalize(u *url.URL) string {
	return purell.NormalizeURL(clean(u), NormalizationFlags)
}

// clean removes tracking query params from a URL. Unlike a content
// aggregator we keep fragments: they can be meaningful on an arbitrary
// destination.
func clean(u *url.URL) *url.URL {
	u.RawQuery = filterParams(u).Encode()
	return u
}

func filterParams(u *url.URL) url.Values {
	filtered := url.Values{}
	for param, values := range u.Query() {
		if excludeParamPattern.MatchString(param) {
			continue
		}
		for _, v := range values {
			filtered.Add(param, v)
		}
	}
	return filtered
}

func listToRegexp(prefix string, suffix string, patterns []string) *regexp.Regexp {
	combinedPattern := fmt.Sprintf("%s%s%s", prefix, strings.Join(patterns, "|"), suffix)
	return regexp.MustCompile(combinedPattern)
}
