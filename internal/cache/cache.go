package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// TTL is the validity window for a cached response.
const TTL = 15 * time.Minute

// entry is the stored envelope: the payload plus its capture timestamp
// in unix milliseconds. The cache layer, not the store, decides expiry.
type entry struct {
	Payload   json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Store is the substrate a Cache persists envelopes in. Get reports a
// miss as (nil, false, nil), not an error. Stores never expire entries.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cache is a time-boxed response cache for remote API payloads.
// Entries older than the TTL are treated as absent on read; they stay
// in the store until a fresh fetch overwrites the same key.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// New constructs a Cache with the 15-minute TTL and the real clock.
func New(store Store) *Cache {
	return &Cache{store: store, ttl: TTL, now: time.Now}
}

// NewWithClock constructs a Cache with an injectable clock (for tests).
func NewWithClock(store Store, now func() time.Time) *Cache {
	return &Cache{store: store, ttl: TTL, now: now}
}

// Get returns the cached payload for key, with ok reporting whether a
// fresh entry was found. A stale or missing entry is (nil, false, nil).
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("unmarshaling cache entry %s: %w", key, err)
	}

	if c.now().UnixMilli()-e.Timestamp >= c.ttl.Milliseconds() {
		return nil, false, nil
	}

	return e.Payload, true, nil
}

// Set stores payload under key with the current timestamp, overwriting
// any prior entry.
func (c *Cache) Set(ctx context.Context, key string, payload json.RawMessage) error {
	b, err := json.Marshal(entry{Payload: payload, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("marshaling cache entry %s: %w", key, err)
	}

	if err := c.store.Set(ctx, key, b); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	return nil
}

// Key builders. Each operation gets its own prefix so parameters from
// different operations cannot collide.

// CountriesKey is the cache key for the country list.
func CountriesKey() string { return "countries" }

// WeatherKey is the cache key for a weather lookup at the given
// coordinates. Floats render in shortest form, so keys are deterministic.
func WeatherKey(lat, lng float64) string {
	return "weather_" + strconv.FormatFloat(lat, 'f', -1, 64) +
		"_" + strconv.FormatFloat(lng, 'f', -1, 64)
}

// ExchangeKey is the cache key for a rate table with the given base.
func ExchangeKey(base string) string { return "exchange_" + base }
