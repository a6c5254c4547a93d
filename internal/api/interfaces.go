package api

import (
	"context"

	"github.com/tourspots/explorer/internal/destination"
)

// DestinationProvider defines the provider operations needed by handlers.
type DestinationProvider interface {
	GetDestinations(ctx context.Context) ([]destination.Enriched, error)
	GetDestinationDetails(ctx context.Context, id int) (*destination.Details, error)
	SearchDestinations(ctx context.Context, query, region string) ([]destination.Enriched, error)
}
