package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tourspots/explorer/internal/destination"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository serves the destination catalog from Postgres. The lookup
// columns (name, country, region) live beside a JSONB document holding
// the full record.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

// Destinations returns the full catalog ordered by id. Satisfies
// destination.Source.
func (r *Repository) Destinations(ctx context.Context) ([]destination.Destination, error) {
	const q = `
		SELECT id, name, country, region, detail
		FROM destinations
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying destinations: %w", err)
	}
	defer rows.Close()

	var dests []destination.Destination
	for rows.Next() {
		var (
			id                    int
			name, country, region string
			detailJSON            []byte
		)
		if err := rows.Scan(&id, &name, &country, &region, &detailJSON); err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}

		var d destination.Destination
		if err := json.Unmarshal(detailJSON, &d); err != nil {
			return nil, fmt.Errorf("unmarshaling detail for destination %d: %w", id, err)
		}

		// Lookup columns win over whatever the document says.
		d.ID = id
		d.Name = name
		d.Country = country
		d.Region = region

		dests = append(dests, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}

	return dests, nil
}

// Seed upserts the given catalog records. Run at startup so the table
// always carries the bundled six destinations.
func (r *Repository) Seed(ctx context.Context, dests []destination.Destination) error {
	const q = `
		INSERT INTO destinations (id, name, country, region, detail, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name       = EXCLUDED.name,
		    country    = EXCLUDED.country,
		    region     = EXCLUDED.region,
		    detail     = EXCLUDED.detail,
		    updated_at = EXCLUDED.updated_at
	`

	for _, d := range dests {
		detailJSON, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshaling destination %d: %w", d.ID, err)
		}

		if _, err := r.q.Exec(ctx, q, d.ID, d.Name, d.Country, d.Region, detailJSON); err != nil {
			return fmt.Errorf("seeding destination %d: %w", d.ID, err)
		}
	}

	return nil
}
