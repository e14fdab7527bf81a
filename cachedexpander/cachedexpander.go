// Package cachedexpander decorates an urlexpand.Interface with a
// result cache. Shortened links are immutable pointers in practice, so
// successfully resolved destinations can be cached aggressively.
package cachedexpander

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/urlexpand/urlexpand"
)

// CachedExpander is an Expander implementation that caches its
// results. Only successful resolutions are cached; failures are
// re-attempted on the next request.
type CachedExpander struct {
	cache    Cache
	expander urlexpand.Interface
}

var _ urlexpand.Interface = &CachedExpander{} // CachedExpander implements Interface

// New creates a new CachedExpander.
func New(expander urlexpand.Interface, cache Cache) *CachedExpander {
	return &CachedExpander{
		cache:    cache,
		expander: expander,
	}
}

// Expand expands a URL if its result is not already cached.
func (c *CachedExpander) Expand(ctx context.Context, url string) (urlexpand.Result, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("expander.cache_name", c.cache.Name()))

	if result, ok := c.cache.Get(ctx, url); ok {
		span.SetAttributes(attribute.String("expander.cache_result", "hit"))
		return result, nil
	}

	result, err := c.expander.Expand(ctx, url)
	if err == nil {
		c.cache.Add(ctx, url, result)
	}

	span.SetAttributes(attribute.String("expander.cache_result", "miss"))
	return result, err
}
