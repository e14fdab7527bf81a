package urlexpand

import (
	"sort"
	"strings"
)

// strategy identifies the mechanism a shortener uses to reach its
// destination. Providers differ in mechanism, not just domain name, so
// dispatch is strategy-based: a naive redirect follower would stop at
// the ad page on interstitial providers.
type strategy int

const (
	// strategyGeneric follows the HTTP redirect chain. It is also the
	// default for any registered domain without a specialized strategy.
	strategyGeneric strategy = iota

	// strategyRedirect is the explicit redirect group from the service
	// table. Same mechanism as strategyGeneric.
	strategyRedirect

	// strategyRefresh extracts the target of a meta refresh tag.
	strategyRefresh

	// strategyAdfly decodes the ysmm payload on AdFly interstitials.
	strategyAdfly

	// strategyAdfocus extracts the click_url assignment on AdFocus
	// interstitials.
	strategyAdfocus

	// strategyShortURL extracts the destination input field on
	// shorturl.at interstitials.
	strategyShortURL
)

func (s strategy) String() string {
	switch s {
	case strategyRedirect:
		return "redirect"
	case strategyRefresh:
		return "refresh"
	case strategyAdfly:
		return "adfly"
	case strategyAdfocus:
		return "adfocus"
	case strategyShortURL:
		return "shorturl"
	default:
		return "generic"
	}
}

// serviceStrategies maps every known shortener domain to the strategy
// required to resolve it. Read-only after process start; adding a new
// shortener means adding one entry here.
var serviceStrategies = map[string]strategy{
	// AdFly and its mirror domains all serve the same interstitial.
	"adf.ly":       strategyAdfly,
	"atominik.com": strategyAdfly,
	"fumacrom.com": strategyAdfly,
	"intamema.com": strategyAdfly,
	"j.gs":         strategyAdfly,
	"q.gs":         strategyAdfly,

	// Plain HTTP redirect chains.
	"gns.io":       strategyRedirect,
	"ity.im":       strategyRedirect,
	"ldn.im":       strategyRedirect,
	"nowlinks.net": strategyRedirect,
	"rlu.ru":       strategyRedirect,
	"tinyurl.com":  strategyRedirect,
	"tr.im":        strategyRedirect,
	"u.to":         strategyRedirect,
	"vzturl.com":   strategyRedirect,

	// Destination embedded in a meta refresh tag.
	"cutt.us": strategyRefresh,
	"soo.gd":  strategyRefresh,
	"surl.li": strategyRefresh,

	// Provider-specific interstitial pages.
	"adfoc.us":    strategyAdfocus,
	"shorturl.at": strategyShortURL,

	// Everything below resolves with the generic redirect follower.
	"b.link":     strategyGeneric,
	"bit.do":     strategyGeneric,
	"bit.ly":     strategyGeneric,
	"buff.ly":    strategyGeneric,
	"cutt.ly":    strategyGeneric,
	"db.tt":      strategyGeneric,
	"fb.me":      strategyGeneric,
	"goo.gl":     strategyGeneric,
	"is.gd":      strategyGeneric,
	"kutt.it":    strategyGeneric,
	"lnkd.in":    strategyGeneric,
	"ow.ly":      strategyGeneric,
	"qr.ae":      strategyGeneric,
	"rb.gy":      strategyGeneric,
	"rebrand.ly": strategyGeneric,
	"rotf.lol":   strategyGeneric,
	"s.coop":     strategyGeneric,
	"s.id":       strategyGeneric,
	"snip.ly":    strategyGeneric,
	"t.co":       strategyGeneric,
	"t.ly":       strategyGeneric,
	"tiny.cc":    strategyGeneric,
	"v.gd":       strategyGeneric,
	"v.ht":       strategyGeneric,
	"x.co":       strategyGeneric,
	"y2u.be":     strategyGeneric,
	"youtu.be":   strategyGeneric,
}

// serviceDomains is the classifier's view of the registry, derived
// from serviceStrategies at init so the two cannot drift.
var serviceDomains = func() []string {
	domains := make([]string, 0, len(serviceStrategies))
	for d := range serviceStrategies {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}()

// normalizeHost lower-cases a host and strips a single trailing dot
// (FQDN form).
func normalizeHost(host string) string {
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// domainMatchesService reports whether domain equals service or is a
// subdomain of it. The suffix match is bounded to a label boundary, so
// x.bit.ly matches bit.ly but notbit.ly does not.
func domainMatchesService(domain, service string) bool {
	return domain == service || strings.HasSuffix(domain, "."+service)
}

// domainIsShortened reports whether a host (without scheme) belongs to
// a registered shortener service.
func domainIsShortened(host string) bool {
	_, ok := whichService(host)
	return ok
}

// whichService returns the registered service domain matching host.
// Linear scan: the registry holds a few dozen entries, so anything
// cleverer would be wasted.
func whichService(host string) (string, bool) {
	d := normalizeHost(host)
	for _, svc := range serviceDomains {
		if domainMatchesService(d, svc) {
			return svc, true
		}
	}
	return "", false
}

// strategyFor looks up the strategy registered for a service domain
// returned by whichService.
func strategyFor(service string) (strategy, bool) {
	s, ok := serviceStrategies[service]
	return s, ok
}
