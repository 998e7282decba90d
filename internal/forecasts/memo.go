package forecasts

import (
	"context"
	"time"

	"weatherdash/internal/cache"
	"weatherdash/internal/types"
)

// Memoizing wrappers around the two network stages of the pipeline. Both key
// on the exact city argument as typed by the caller and store successful
// results only; failed lookups hit the upstream again on the next call.

// CachedGeocoder memoizes city coordinate lookups. The same instance is
// shared by every path that resolves city names, so a city geocoded for a
// forecast render is not re-resolved by the climate path within the TTL.
type CachedGeocoder struct {
	upstream Geocoder
	memo     *cache.Store[types.Location]
}

// NewCachedGeocoder wraps a geocoder with a TTL memo. A nil clock falls back
// to the system clock.
func NewCachedGeocoder(upstream Geocoder, ttl time.Duration, clock types.Clock) *CachedGeocoder {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &CachedGeocoder{
		upstream: upstream,
		memo:     cache.New[types.Location](ttl, clock),
	}
}

// Geocode resolves a city through the memo.
func (g *CachedGeocoder) Geocode(ctx context.Context, city string) (types.Location, error) {
	if loc, ok := g.memo.Get(city); ok {
		return loc, nil
	}
	loc, err := g.upstream.Geocode(ctx, city)
	if err != nil {
		return types.Location{}, err
	}
	g.memo.Set(city, loc)
	return loc, nil
}

// Stats reports the memo's hit and miss counters.
func (g *CachedGeocoder) Stats() (hits, misses int64) {
	return g.memo.Stats()
}

// CachedFeedFetcher memoizes raw forecast feed fetches. The key is the city
// alone: the day count is applied after the fetch, so renders with different
// day counts share one cached feed.
type CachedFeedFetcher struct {
	upstream FeedFetcher
	memo     *cache.Store[types.ForecastFeed]
}

// NewCachedFeedFetcher wraps a feed fetcher with a TTL memo. A nil clock
// falls back to the system clock.
func NewCachedFeedFetcher(upstream FeedFetcher, ttl time.Duration, clock types.Clock) *CachedFeedFetcher {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &CachedFeedFetcher{
		upstream: upstream,
		memo:     cache.New[types.ForecastFeed](ttl, clock),
	}
}

// Forecast fetches a city's feed through the memo.
func (f *CachedFeedFetcher) Forecast(ctx context.Context, city string) (types.ForecastFeed, error) {
	if feed, ok := f.memo.Get(city); ok {
		return feed, nil
	}
	feed, err := f.upstream.Forecast(ctx, city)
	if err != nil {
		return types.ForecastFeed{}, err
	}
	f.memo.Set(city, feed)
	return feed, nil
}

// Stats reports the memo's hit and miss counters.
func (f *CachedFeedFetcher) Stats() (hits, misses int64) {
	return f.memo.Stats()
}
