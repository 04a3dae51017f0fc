package geocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/de-tools/jyotish-atlas/pkg/models/store"
	"github.com/de-tools/jyotish-atlas/pkg/store/duckdb"
)

// Store persists geocoder answers. Entries older than the configured TTL are
// treated as misses.
type Store interface {
	Get(ctx context.Context, query string) (domain.Coordinates, bool, error)
	Put(ctx context.Context, query string, coords domain.Coordinates) error
	Entries(ctx context.Context) ([]store.GeoRecord, error)
}

type geoStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewStore returns a cache; ttl <= 0 keeps entries forever.
func NewStore(db *sql.DB, ttl time.Duration) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &geoStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *geoStore) Get(ctx context.Context, query string) (domain.Coordinates, bool, error) {
	var rec store.GeoRecord
	err := duckdb.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT query, latitude, longitude, created_at FROM geocode_cache WHERE query = ?`, query,
	).Scan(&rec.Query, &rec.Latitude, &rec.Longitude, &rec.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("query geocode cache: %w", err)
	}
	if s.ttl > 0 && s.now().Sub(rec.CreatedAt) > s.ttl {
		return domain.Coordinates{}, false, nil
	}
	return domain.Coordinates{Latitude: rec.Latitude, Longitude: rec.Longitude}, true, nil
}

func (s *geoStore) Put(ctx context.Context, query string, coords domain.Coordinates) error {
	_, err := duckdb.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT OR REPLACE INTO geocode_cache (query, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?)`,
		query, coords.Latitude, coords.Longitude, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert geocode cache: %w", err)
	}
	return nil
}

func (s *geoStore) Entries(ctx context.Context) ([]store.GeoRecord, error) {
	rows, err := duckdb.QuerierFrom(ctx, s.db).QueryContext(ctx,
		`SELECT query, latitude, longitude, created_at FROM geocode_cache ORDER BY query`)
	if err != nil {
		return nil, fmt.Errorf("query geocode cache: %w", err)
	}
	defer rows.Close()

	var out []store.GeoRecord
	for rows.Next() {
		var rec store.GeoRecord
		if err := rows.Scan(&rec.Query, &rec.Latitude, &rec.Longitude, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan geocode entry: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
