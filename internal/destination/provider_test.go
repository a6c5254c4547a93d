package destination_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourspots/explorer/internal/destination"
)

// ---- mock clients and catalog sources ----

type mockCountries struct {
	fetchFn func(ctx context.Context) ([]destination.CountryRecord, error)
}

func (m *mockCountries) Fetch(ctx context.Context) ([]destination.CountryRecord, error) {
	return m.fetchFn(ctx)
}

type mockWeather struct {
	fetchFn func(ctx context.Context, lat, lng float64) (*destination.CurrentWeather, error)
}

func (m *mockWeather) Fetch(ctx context.Context, lat, lng float64) (*destination.CurrentWeather, error) {
	return m.fetchFn(ctx, lat, lng)
}

type mockExchange struct {
	fetchFn func(ctx context.Context, base string) (*destination.RateTable, error)
}

func (m *mockExchange) Fetch(ctx context.Context, base string) (*destination.RateTable, error) {
	return m.fetchFn(ctx, base)
}

type failingSource struct{}

func (failingSource) Destinations(context.Context) ([]destination.Destination, error) {
	return nil, errors.New("catalog backend down")
}

type fixedSource struct {
	dests []destination.Destination
}

func (s *fixedSource) Destinations(context.Context) ([]destination.Destination, error) {
	return s.dests, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- helpers ----

var remoteDown = &destination.RemoteError{Op: "countries", Status: 503}

func sampleCountries() []destination.CountryRecord {
	return []destination.CountryRecord{
		{
			CommonName: "France", Code: "FR",
			Currencies: []string{"EUR"}, Languages: []string{"French"},
			Population: 67391582, LatLng: []float64{46.0, 2.0},
		},
		{
			CommonName: "United States of America", Code: "US",
			Currencies: []string{"USD"}, Languages: []string{"English"},
			Population: 329484123, LatLng: []float64{38.0, -97.0},
		},
		{
			CommonName: "Japan", Code: "JP",
			Currencies: []string{"JPY"}, Languages: []string{"Japanese"},
			Population: 125836021, LatLng: []float64{36.0, 138.0},
		},
	}
}

func countriesOK() *mockCountries {
	return &mockCountries{fetchFn: func(context.Context) ([]destination.CountryRecord, error) {
		return sampleCountries(), nil
	}}
}

func countriesDown() *mockCountries {
	return &mockCountries{fetchFn: func(context.Context) ([]destination.CountryRecord, error) {
		return nil, remoteDown
	}}
}

func weatherOK() *mockWeather {
	return &mockWeather{fetchFn: func(_ context.Context, _, _ float64) (*destination.CurrentWeather, error) {
		return &destination.CurrentWeather{Temperature: 21.0, WindSpeed: 8.2, WeatherCode: 2, Condition: "Partly cloudy"}, nil
	}}
}

func weatherDown() *mockWeather {
	return &mockWeather{fetchFn: func(_ context.Context, _, _ float64) (*destination.CurrentWeather, error) {
		return nil, &destination.RemoteError{Op: "weather", Status: 500}
	}}
}

func exchangeOK() *mockExchange {
	return &mockExchange{fetchFn: func(_ context.Context, base string) (*destination.RateTable, error) {
		return &destination.RateTable{Base: base, Rates: map[string]float64{"USD": 1.09}}, nil
	}}
}

func exchangeDown() *mockExchange {
	return &mockExchange{fetchFn: func(_ context.Context, _ string) (*destination.RateTable, error) {
		return nil, &destination.RemoteError{Op: "exchange", Status: 502}
	}}
}

func newTestProvider(t *testing.T, cf *mockCountries, wf *mockWeather, ef *mockExchange) *destination.Provider {
	t.Helper()
	catalog, err := destination.LoadCatalog()
	require.NoError(t, err)
	return destination.NewProviderWithClients(catalog, cf, wf, ef, testLogger())
}

func names(dests []destination.Enriched) []string {
	out := make([]string, 0, len(dests))
	for _, d := range dests {
		out = append(out, d.Name)
	}
	return out
}

// ---- GetDestinations ----

func TestGetDestinations_Enriches(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	dests, err := p.GetDestinations(context.Background())
	require.NoError(t, err)
	require.Len(t, dests, 6)

	paris := dests[0]
	assert.Equal(t, "Paris", paris.Name)
	assert.Equal(t, "FR", paris.CountryCode)
	assert.Equal(t, "EUR", paris.Currency)
	assert.Equal(t, []string{"French"}, paris.Languages)
	assert.Equal(t, int64(67391582), paris.Population)
	assert.Equal(t, []float64{46.0, 2.0}, paris.Coordinates,
		"remote coordinates should replace the catalog pair")
}

func TestGetDestinations_BidirectionalSubstringMatch(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	dests, err := p.GetDestinations(context.Background())
	require.NoError(t, err)

	// Catalog says "United States"; the record says "United States of
	// America". Containment in either direction pairs them.
	nyc := dests[2]
	require.Equal(t, "New York City", nyc.Name)
	assert.Equal(t, "US", nyc.CountryCode)
	assert.Equal(t, "USD", nyc.Currency)
}

func TestGetDestinations_NoMatchLeavesUnenriched(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	dests, err := p.GetDestinations(context.Background())
	require.NoError(t, err)

	// sampleCountries has no record for Australia.
	sydney := dests[3]
	require.Equal(t, "Sydney", sydney.Name)
	assert.Empty(t, sydney.CountryCode)
	assert.Empty(t, sydney.Currency)
	assert.Empty(t, sydney.Languages)
	assert.Zero(t, sydney.Population)
	assert.Equal(t, []float64{-33.8688, 151.2093}, sydney.Coordinates,
		"catalog coordinates should survive an unmatched record")
}

func TestGetDestinations_CountriesServiceDown(t *testing.T) {
	p := newTestProvider(t, countriesDown(), weatherOK(), exchangeOK())

	dests, err := p.GetDestinations(context.Background())
	require.NoError(t, err, "a countries outage must not fail the catalog")
	require.Len(t, dests, 6)

	for _, d := range dests {
		assert.Empty(t, d.CountryCode)
		assert.Empty(t, d.Currency)
		assert.Empty(t, d.Languages)
		assert.Zero(t, d.Population)
	}
}

func TestGetDestinations_FirstCountryMatchWins(t *testing.T) {
	catalog := &fixedSource{dests: []destination.Destination{{
		ID: 1, Name: "Georgetown", Country: "Guinea", Region: "africa",
		Attractions: []string{"Old Town"},
	}}}

	// Both names contain "Guinea"; order decides.
	cf := &mockCountries{fetchFn: func(context.Context) ([]destination.CountryRecord, error) {
		return []destination.CountryRecord{
			{CommonName: "Guinea-Bissau", Code: "GW", Currencies: []string{"XOF"}},
			{CommonName: "Guinea", Code: "GN", Currencies: []string{"GNF"}},
		}, nil
	}}

	p := destination.NewProviderWithClients(catalog, cf, weatherOK(), exchangeOK(), testLogger())

	dests, err := p.GetDestinations(context.Background())
	require.NoError(t, err)
	require.Len(t, dests, 1)
	assert.Equal(t, "GW", dests[0].CountryCode)
}

// ---- GetDestinationDetails ----

func TestGetDestinationDetails_FullView(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	det, err := p.GetDestinationDetails(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "Paris", det.Name)
	require.NotNil(t, det.Weather)
	assert.Equal(t, 21.0, det.Weather.Temperature)
	assert.Equal(t, "Partly cloudy", det.Weather.Condition)
	require.NotNil(t, det.ExchangeRates)
	assert.Equal(t, "EUR", det.ExchangeRates.Base)
}

func TestGetDestinationDetails_UnknownID(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	_, err := p.GetDestinationDetails(context.Background(), 999)
	require.Error(t, err)

	var nf *destination.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, 999, nf.ID)
}

func TestGetDestinationDetails_WeatherDown(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherDown(), exchangeOK())

	det, err := p.GetDestinationDetails(context.Background(), 1)
	require.NoError(t, err, "a weather outage must not fail the detail view")

	assert.Nil(t, det.Weather)
	require.NotNil(t, det.ExchangeRates, "the independent rate fetch should still land")
	assert.Equal(t, "Paris", det.Name)
	assert.Equal(t, "FR", det.CountryCode)
}

func TestGetDestinationDetails_ExchangeDown(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeDown())

	det, err := p.GetDestinationDetails(context.Background(), 1)
	require.NoError(t, err)

	assert.Nil(t, det.ExchangeRates)
	require.NotNil(t, det.Weather)
}

func TestGetDestinationDetails_NoCurrencySkipsRates(t *testing.T) {
	called := false
	ef := &mockExchange{fetchFn: func(_ context.Context, _ string) (*destination.RateTable, error) {
		called = true
		return nil, nil
	}}

	// Countries down → no enrichment → no currency on any destination.
	p := newTestProvider(t, countriesDown(), weatherOK(), ef)

	det, err := p.GetDestinationDetails(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, det.ExchangeRates)
	assert.False(t, called, "no currency code means no rate fetch")
}

// ---- SearchDestinations ----

func TestSearchDestinations_EmptyQueryAllRegions(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	dests, err := p.SearchDestinations(context.Background(), "", "all")
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Paris", "Tokyo", "New York City", "Sydney", "Cape Town", "Rio de Janeiro"},
		names(dests), "full catalog, order preserved")
}

func TestSearchDestinations_ByName(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	dests, err := p.SearchDestinations(context.Background(), "PARIS", "all")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris"}, names(dests))
}

func TestSearchDestinations_ByRegion(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	dests, err := p.SearchDestinations(context.Background(), "", "asia")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tokyo"}, names(dests))
}

func TestSearchDestinations_ByAttraction(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	// "Blue Mountains" (Sydney) and "Table Mountain" / "Sugarloaf
	// Mountain" put three destinations in range.
	dests, err := p.SearchDestinations(context.Background(), "mountain", "all")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sydney", "Cape Town", "Rio de Janeiro"}, names(dests))
}

func TestSearchDestinations_QueryAndRegionAreConjunctive(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	dests, err := p.SearchDestinations(context.Background(), "mountain", "africa")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cape Town"}, names(dests))
}

func TestSearchDestinations_NoMatches(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())

	dests, err := p.SearchDestinations(context.Background(), "atlantis", "all")
	require.NoError(t, err)
	assert.Empty(t, dests)
}

// ---- matcher ----

func TestMatchCountryName(t *testing.T) {
	rec := destination.CountryRecord{CommonName: "United States of America"}
	assert.True(t, destination.MatchCountryName("United States", rec))
	assert.True(t, destination.MatchCountryName("united states of america and more", rec))
	assert.False(t, destination.MatchCountryName("France", rec))
	assert.False(t, destination.MatchCountryName("France", destination.CountryRecord{}),
		"empty record name must never match")
}

func TestSetMatchFunc(t *testing.T) {
	p := newTestProvider(t, countriesOK(), weatherOK(), exchangeOK())
	p.SetMatchFunc(func(_ string, _ destination.CountryRecord) bool { return false })

	dests, err := p.GetDestinations(context.Background())
	require.NoError(t, err)
	for _, d := range dests {
		assert.Empty(t, d.CountryCode)
	}
}
