package destination

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
)

//go:embed catalog.json
var catalogJSON []byte

// validRegions is the fixed set of region tags a catalog record may carry.
var validRegions = map[string]bool{
	"europe":        true,
	"asia":          true,
	"north-america": true,
	"oceania":       true,
	"africa":        true,
	"south-america": true,
}

// Source yields the destination catalog. Implemented by the embedded
// Catalog, the Postgres repository, and the fallback wrapper.
type Source interface {
	Destinations(ctx context.Context) ([]Destination, error)
}

// Catalog is the static destination set bundled with the binary.
type Catalog struct {
	dests []Destination
}

// LoadCatalog decodes and validates the embedded catalog. A malformed
// record is a startup invariant violation, so the error is meant to be
// fatal at process start.
func LoadCatalog() (*Catalog, error) {
	var dests []Destination
	if err := json.Unmarshal(catalogJSON, &dests); err != nil {
		return nil, fmt.Errorf("decoding embedded catalog: %w", err)
	}

	seen := make(map[int]bool, len(dests))
	for _, d := range dests {
		if err := validate(d); err != nil {
			return nil, fmt.Errorf("catalog record %d: %w", d.ID, err)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("catalog record %d: duplicate id", d.ID)
		}
		seen[d.ID] = true
	}

	return &Catalog{dests: dests}, nil
}

func validate(d Destination) error {
	switch {
	case d.ID <= 0:
		return fmt.Errorf("invalid id %d", d.ID)
	case d.Name == "":
		return fmt.Errorf("missing name")
	case d.Country == "":
		return fmt.Errorf("missing country")
	case !validRegions[d.Region]:
		return fmt.Errorf("unknown region %q", d.Region)
	case len(d.Attractions) == 0:
		return fmt.Errorf("empty attractions")
	}
	return nil
}

// Destinations returns the embedded records. It never fails and never
// mutates the underlying slice.
func (c *Catalog) Destinations(_ context.Context) ([]Destination, error) {
	return c.dests, nil
}

// fallbackSource reads from a primary source and falls open to a
// secondary one when the primary errors.
type fallbackSource struct {
	primary  Source
	fallback Source
	log      *slog.Logger
}

// NewFallbackSource wraps primary so that a read failure degrades to the
// fallback source instead of surfacing an error.
func NewFallbackSource(primary, fallback Source, log *slog.Logger) Source {
	return &fallbackSource{primary: primary, fallback: fallback, log: log}
}

func (s *fallbackSource) Destinations(ctx context.Context) ([]Destination, error) {
	dests, err := s.primary.Destinations(ctx)
	if err != nil {
		s.log.Warn("primary catalog source failed, using fallback", "err", err)
		return s.fallback.Destinations(ctx)
	}
	return dests, nil
}
