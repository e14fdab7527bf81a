package urlexpand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainMatchesService(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		domain  string
		service string
		want    bool
	}{
		{"bit.ly", "bit.ly", true},
		{"sub.bit.ly", "bit.ly", true},
		{"a.b.bit.ly", "bit.ly", true},

		// Suffix matching stops at label boundaries.
		{"notbit.ly", "bit.ly", false},
		{"evilbit.ly", "bit.ly", false},
		{"bit.ly.example.com", "bit.ly", false},
		{"", "bit.ly", false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.domain, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, domainMatchesService(tc.domain, tc.service))
		})
	}
}

func TestWhichService(t *testing.T) {
	t.Parallel()

	svc, ok := whichService("bit.ly")
	require.True(t, ok)
	assert.Equal(t, "bit.ly", svc)

	svc, ok = whichService("x.bit.ly")
	require.True(t, ok)
	assert.Equal(t, "bit.ly", svc)

	// Host normalization: case and a trailing FQDN dot.
	svc, ok = whichService("BIT.LY.")
	require.True(t, ok)
	assert.Equal(t, "bit.ly", svc)

	_, ok = whichService("notbit.ly")
	assert.False(t, ok)

	_, ok = whichService("example.com")
	assert.False(t, ok)
}

func TestStrategyFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		service string
		want    strategy
	}{
		{"adf.ly", strategyAdfly},
		{"j.gs", strategyAdfly},
		{"tinyurl.com", strategyRedirect},
		{"cutt.us", strategyRefresh},
		{"adfoc.us", strategyAdfocus},
		{"shorturl.at", strategyShortURL},
		{"bit.ly", strategyGeneric},
		{"lnkd.in", strategyGeneric},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.service, func(t *testing.T) {
			t.Parallel()
			s, ok := strategyFor(tc.service)
			require.True(t, ok)
			assert.Equal(t, tc.want, s)
		})
	}

	_, ok := strategyFor("example.com")
	assert.False(t, ok)
}

func TestStrategyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "generic", strategyGeneric.String())
	assert.Equal(t, "redirect", strategyRedirect.String())
	assert.Equal(t, "refresh", strategyRefresh.String())
	assert.Equal(t, "adfly", strategyAdfly.String())
	assert.Equal(t, "adfocus", strategyAdfocus.String())
	assert.Equal(t, "shorturl", strategyShortURL.String())
}

func TestServiceDomainsDerivedFromRegistry(t *testing.T) {
	t.Parallel()

	assert.Len(t, serviceDomains, len(serviceStrategies))
	for _, d := range serviceDomains {
		_, ok := serviceStrategies[d]
		assert.True(t, ok, "classifier domain %q missing from registry", d)
	}
}
