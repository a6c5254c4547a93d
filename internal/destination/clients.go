package destination

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/tourspots/explorer/internal/cache"
)

const httpTimeout = 10 * time.Second

// newHTTPClient returns an http.Client with a 10-second timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// doGet performs a GET request and decodes the JSON response into dst.
// Any failure comes back as a *RemoteError tagged with op.
func doGet(ctx context.Context, client *http.Client, op, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("creating request for %s: %w", rawURL, err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("GET %s: %w", rawURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("decoding response from %s: %w", rawURL, err)}
	}

	return nil
}

// cacheLookup unmarshals a fresh cache hit for key into dst and reports
// whether one was found. Cache errors are logged and treated as misses.
func cacheLookup(ctx context.Context, c *cache.Cache, key string, dst any) bool {
	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		slog.Warn("cache lookup failed", "key", key, "err", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Warn("cached payload unreadable", "key", key, "err", err)
		return false
	}
	return true
}

// cacheStore marshals v and stores it under key. Failures are logged,
// never surfaced: a dead cache must not break a successful fetch.
func cacheStore(ctx context.Context, c *cache.Cache, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Warn("marshaling payload for cache failed", "key", key, "err", err)
		return
	}
	if err := c.Set(ctx, key, b); err != nil {
		slog.Warn("cache store failed", "key", key, "err", err)
	}
}

// ---- RestCountries ----

// CountriesClient fetches the full country list from RestCountries
// (no API key required).
type CountriesClient struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

const countriesDefaultURL = "https://restcountries.com/v3.1/all"

// NewCountriesClient constructs a CountriesClient using the production URL.
func NewCountriesClient(c *cache.Cache) *CountriesClient {
	return &CountriesClient{baseURL: countriesDefaultURL, client: newHTTPClient(), cache: c}
}

// NewCountriesClientWithURL constructs a CountriesClient pointing at a custom base URL (for tests).
func NewCountriesClientWithURL(baseURL string, c *cache.Cache) *CountriesClient {
	return &CountriesClient{baseURL: baseURL, client: newHTTPClient(), cache: c}
}

type restCountriesEntry struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	CCA2       string            `json:"cca2"`
	Languages  map[string]string `json:"languages"`
	Currencies map[string]struct {
		Name string `json:"name"`
	} `json:"currencies"`
	Population int64     `json:"population"`
	LatLng     []float64 `json:"latlng"`
}

// Fetch retrieves the normalized country list, serving from cache when a
// fresh entry exists. Currency codes and language names come back sorted
// so the first-listed pick is deterministic.
func (c *CountriesClient) Fetch(ctx context.Context) ([]CountryRecord, error) {
	key := cache.CountriesKey()

	var cached []CountryRecord
	if cacheLookup(ctx, c.cache, key, &cached) {
		return cached, nil
	}

	var raw []restCountriesEntry
	if err := doGet(ctx, c.client, "countries", c.baseURL, &raw); err != nil {
		return nil, err
	}

	records := make([]CountryRecord, 0, len(raw))
	for _, e := range raw {
		currencies := make([]string, 0, len(e.Currencies))
		for code := range e.Currencies {
			currencies = append(currencies, code)
		}
		sort.Strings(currencies)

		languages := make([]string, 0, len(e.Languages))
		for _, lang := range e.Languages {
			languages = append(languages, lang)
		}
		sort.Strings(languages)

		records = append(records, CountryRecord{
			CommonName: e.Name.Common,
			Code:       e.CCA2,
			Currencies: currencies,
			Languages:  languages,
			Population: e.Population,
			LatLng:     e.LatLng,
		})
	}

	cacheStore(ctx, c.cache, key, records)
	return records, nil
}

// ---- Open-Meteo ----

// WeatherClient fetches current conditions from Open-Meteo (no API key
// required).
type WeatherClient struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

const weatherDefaultURL = "https://api.open-meteo.com/v1/forecast"

// NewWeatherClient constructs a WeatherClient using the production URL.
func NewWeatherClient(c *cache.Cache) *WeatherClient {
	return &WeatherClient{baseURL: weatherDefaultURL, client: newHTTPClient(), cache: c}
}

// NewWeatherClientWithURL constructs a WeatherClient pointing at a custom base URL (for tests).
func NewWeatherClientWithURL(baseURL string, c *cache.Cache) *WeatherClient {
	return &WeatherClient{baseURL: baseURL, client: newHTTPClient(), cache: c}
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Fetch retrieves current weather for the given coordinates.
func (c *WeatherClient) Fetch(ctx context.Context, lat, lng float64) (*CurrentWeather, error) {
	key := cache.WeatherKey(lat, lng)

	var cached CurrentWeather
	if cacheLookup(ctx, c.cache, key, &cached) {
		return &cached, nil
	}

	endpoint := c.baseURL +
		"?latitude=" + strconv.FormatFloat(lat, 'f', -1, 64) +
		"&longitude=" + strconv.FormatFloat(lng, 'f', -1, 64) +
		"&current_weather=true&daily=temperature_2m_max,temperature_2m_min,weathercode&timezone=auto"

	var raw openMeteoResponse
	if err := doGet(ctx, c.client, "weather", endpoint, &raw); err != nil {
		return nil, err
	}

	w := &CurrentWeather{
		Temperature: raw.CurrentWeather.Temperature,
		WindSpeed:   raw.CurrentWeather.WindSpeed,
		WeatherCode: raw.CurrentWeather.WeatherCode,
		Condition:   Condition(raw.CurrentWeather.WeatherCode),
	}

	cacheStore(ctx, c.cache, key, w)
	return w, nil
}

// ---- exchangerate.host ----

// ExchangeClient fetches exchange rates (no API key required).
type ExchangeClient struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

const exchangeDefaultURL = "https://api.exchangerate.host/latest"

// NewExchangeClient constructs an ExchangeClient using the production URL.
func NewExchangeClient(c *cache.Cache) *ExchangeClient {
	return &ExchangeClient{baseURL: exchangeDefaultURL, client: newHTTPClient(), cache: c}
}

// NewExchangeClientWithURL constructs an ExchangeClient pointing at a custom base URL (for tests).
func NewExchangeClientWithURL(baseURL string, c *cache.Cache) *ExchangeClient {
	return &ExchangeClient{baseURL: baseURL, client: newHTTPClient(), cache: c}
}

// Fetch retrieves the rate table for the given base currency. An empty
// base defaults to USD.
func (c *ExchangeClient) Fetch(ctx context.Context, base string) (*RateTable, error) {
	if base == "" {
		base = "USD"
	}
	key := cache.ExchangeKey(base)

	var cached RateTable
	if cacheLookup(ctx, c.cache, key, &cached) {
		return &cached, nil
	}

	var table RateTable
	if err := doGet(ctx, c.client, "exchange", c.baseURL+"?base="+base, &table); err != nil {
		return nil, err
	}

	cacheStore(ctx, c.cache, key, &table)
	return &table, nil
}
