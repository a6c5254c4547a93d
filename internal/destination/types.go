package destination

// Visa holds entry-requirement information for a destination.
type Visa struct {
	Type         string `json:"type"`
	Duration     string `json:"duration"`
	Cost         string `json:"cost"`
	Requirements string `json:"requirements"`
}

// Stay holds accommodation price ranges and area advice.
type Stay struct {
	Budget      string  `json:"budget"`
	Midrange    string  `json:"midrange"`
	Luxury      string  `json:"luxury"`
	BestAreas   string  `json:"bestAreas"`
	AverageCost float64 `json:"averageCost"`
}

// Security holds safety information for a destination.
type Security struct {
	Level     string `json:"level"`
	Concerns  string `json:"concerns"`
	Emergency string `json:"emergency"`
	Advice    string `json:"advice"`
}

// Destination is a single curated catalog record. Records are immutable
// after catalog load.
type Destination struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Region      string `json:"region"`
	Description string `json:"description"`
	Image       string `json:"image"`
	// Coordinates is a [latitude, longitude] pair.
	Coordinates []float64 `json:"coordinates,omitempty"`
	Visa        Visa      `json:"visa"`
	Stay        Stay      `json:"stay"`
	Security    Security  `json:"security"`
	Attractions []string  `json:"attractions"`
}

// Enriched is a catalog destination augmented with live country data.
// The extra fields stay empty when no country record matched.
type Enriched struct {
	Destination
	CountryCode string   `json:"countryCode,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Languages   []string `json:"languages,omitempty"`
	Population  int64    `json:"population,omitempty"`
}

// Details is the full detail view: an enriched destination plus
// best-effort weather and exchange-rate snapshots.
type Details struct {
	Enriched
	Weather       *CurrentWeather `json:"weather,omitempty"`
	ExchangeRates *RateTable      `json:"exchangeRates,omitempty"`
}

// CountryRecord is a normalized entry from the country-data service.
type CountryRecord struct {
	CommonName string    `json:"name"`
	Code       string    `json:"code"`
	Currencies []string  `json:"currencies,omitempty"`
	Languages  []string  `json:"languages,omitempty"`
	Population int64     `json:"population"`
	LatLng     []float64 `json:"latlng,omitempty"`
}

// CurrentWeather is a normalized current-conditions snapshot.
type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
	Condition   string  `json:"condition"`
}

// RateTable holds exchange rates against a base currency.
type RateTable struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}
