package destination

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tourspots/explorer/internal/cache"
)

// countriesFetcher is the interface satisfied by CountriesClient.
type countriesFetcher interface {
	Fetch(ctx context.Context) ([]CountryRecord, error)
}

// weatherFetcher is the interface satisfied by WeatherClient.
type weatherFetcher interface {
	Fetch(ctx context.Context, lat, lng float64) (*CurrentWeather, error)
}

// exchangeFetcher is the interface satisfied by ExchangeClient.
type exchangeFetcher interface {
	Fetch(ctx context.Context, base string) (*RateTable, error)
}

// Provider serves the enriched catalog, detail views, and search.
// Every remote failure is absorbed here: callers get partial data, not
// errors, for anything but an unknown destination id.
type Provider struct {
	catalog   Source
	countries countriesFetcher
	weather   weatherFetcher
	exchange  exchangeFetcher
	match     MatchFunc
	log       *slog.Logger
}

// NewProvider constructs a Provider with production API clients sharing
// the given response cache.
func NewProvider(catalog Source, c *cache.Cache, log *slog.Logger) *Provider {
	return &Provider{
		catalog:   catalog,
		countries: NewCountriesClient(c),
		weather:   NewWeatherClient(c),
		exchange:  NewExchangeClient(c),
		match:     MatchCountryName,
		log:       log,
	}
}

// NewProviderWithClients constructs a Provider with injectable clients (used in tests).
func NewProviderWithClients(catalog Source, cf countriesFetcher, wf weatherFetcher, ef exchangeFetcher, log *slog.Logger) *Provider {
	return &Provider{
		catalog:   catalog,
		countries: cf,
		weather:   wf,
		exchange:  ef,
		match:     MatchCountryName,
		log:       log,
	}
}

// SetMatchFunc replaces the country-matching heuristic.
func (p *Provider) SetMatchFunc(m MatchFunc) { p.match = m }

// GetDestinations returns the catalog with each record enriched by the
// first matching country record. A country-service failure leaves every
// destination unenriched; catalog order is preserved.
func (p *Provider) GetDestinations(ctx context.Context) ([]Enriched, error) {
	dests, err := p.catalog.Destinations(ctx)
	if err != nil {
		return nil, err
	}

	countries, err := p.countries.Fetch(ctx)
	if err != nil {
		p.log.Warn("countries fetch failed, returning unenriched catalog", "err", err)
		countries = nil
	}

	enriched := make([]Enriched, 0, len(dests))
	for _, d := range dests {
		e := Enriched{Destination: d}
		for _, rec := range countries {
			if !p.match(d.Country, rec) {
				continue
			}
			e.CountryCode = rec.Code
			if len(rec.Currencies) > 0 {
				e.Currency = rec.Currencies[0]
			}
			e.Languages = rec.Languages
			e.Population = rec.Population
			if len(rec.LatLng) == 2 {
				e.Coordinates = rec.LatLng
			}
			break
		}
		enriched = append(enriched, e)
	}

	return enriched, nil
}

// GetDestinationDetails resolves a destination by id and attaches
// current weather and exchange rates. Both sub-fetches are independent
// and run concurrently; either may fail without failing the call. An
// unknown id yields *NotFoundError.
func (p *Provider) GetDestinationDetails(ctx context.Context, id int) (*Details, error) {
	enriched, err := p.GetDestinations(ctx)
	if err != nil {
		return nil, err
	}

	var found *Enriched
	for i := range enriched {
		if enriched[i].ID == id {
			found = &enriched[i]
			break
		}
	}
	if found == nil {
		return nil, &NotFoundError{ID: id}
	}

	det := &Details{Enriched: *found}

	g, gCtx := errgroup.WithContext(ctx)

	if len(found.Coordinates) == 2 {
		lat, lng := found.Coordinates[0], found.Coordinates[1]
		g.Go(func() error {
			w, err := p.weather.Fetch(gCtx, lat, lng)
			if err != nil {
				p.log.Warn("weather fetch failed", "id", id, "err", err)
				return nil
			}
			det.Weather = w
			return nil
		})
	}

	if found.Currency != "" {
		currency := found.Currency
		g.Go(func() error {
			rates, err := p.exchange.Fetch(gCtx, currency)
			if err != nil {
				p.log.Warn("exchange rate fetch failed", "id", id, "currency", currency, "err", err)
				return nil
			}
			det.ExchangeRates = rates
			return nil
		})
	}

	// Goroutines swallow their own errors; Wait only joins them.
	_ = g.Wait()

	return det, nil
}

// SearchDestinations filters the enriched catalog. A destination is kept
// when the query is empty or matches name, country, description, or any
// attraction (case-insensitive substring), and the region filter is
// "all" or equals its region tag. Catalog order is preserved.
func (p *Provider) SearchDestinations(ctx context.Context, query, region string) ([]Enriched, error) {
	enriched, err := p.GetDestinations(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]Enriched, 0, len(enriched))
	for _, e := range enriched {
		if matchesQuery(e.Destination, query) && (region == "all" || region == e.Region) {
			results = append(results, e)
		}
	}

	return results, nil
}

func matchesQuery(d Destination, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)

	if strings.Contains(strings.ToLower(d.Name), q) ||
		strings.Contains(strings.ToLower(d.Country), q) ||
		strings.Contains(strings.ToLower(d.Description), q) {
		return true
	}
	for _, a := range d.Attractions {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}
