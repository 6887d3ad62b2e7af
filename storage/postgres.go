package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"nyc_buildings/identity"
	"nyc_buildings/models"
)

// Pool is the subset of *pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore mirrors building records into a shared Postgres database.
type PostgresStore struct {
	pool Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return NewPostgresStoreFromPool(pool), nil
}

func NewPostgresStoreFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

const createBuildingsTable = `
	CREATE TABLE IF NOT EXISTS buildings (
		file_id TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		address TEXT,
		zip_code TEXT,
		borough TEXT,
		url TEXT NOT NULL,
		record JSONB NOT NULL,
		footprint_url TEXT,
		first_seen_at TIMESTAMPTZ NOT NULL,
		last_scraped_at TIMESTAMPTZ NOT NULL,
		times_scraped INTEGER NOT NULL DEFAULT 1
	)`

// Migrate creates the buildings table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createBuildingsTable); err != nil {
		return eris.Wrap(err, "postgres: create buildings table")
	}
	return nil
}

// Save upserts rec keyed by id and returns a postgres reference. Fields that
// were not found in this scrape keep their previously stored values.
func (s *PostgresStore) Save(ctx context.Context, rec models.BuildingRecord, id string) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", eris.Wrap(err, "postgres: encode record")
	}

	address := deref(rec.Overview.Address)
	zip := deref(rec.Overview.ZipCode)

	query := `
		INSERT INTO buildings (
			file_id, fingerprint, address, zip_code, borough, url, record,
			footprint_url, first_seen_at, last_scraped_at, times_scraped
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, 1)
		ON CONFLICT (file_id) DO UPDATE SET
			fingerprint = EXCLUDED.fingerprint,
			address = COALESCE(EXCLUDED.address, buildings.address),
			zip_code = COALESCE(EXCLUDED.zip_code, buildings.zip_code),
			borough = COALESCE(EXCLUDED.borough, buildings.borough),
			url = EXCLUDED.url,
			record = EXCLUDED.record,
			footprint_url = COALESCE(EXCLUDED.footprint_url, buildings.footprint_url),
			last_scraped_at = EXCLUDED.last_scraped_at,
			times_scraped = buildings.times_scraped + 1
		RETURNING times_scraped`

	var times int
	err = s.pool.QueryRow(ctx, query,
		id,
		identity.Fingerprint(address, zip),
		rec.Overview.Address,
		rec.Overview.ZipCode,
		rec.Overview.Borough,
		rec.SourceURL,
		data,
		rec.FootprintImage,
		rec.RetrievedAt,
	).Scan(&times)
	if err != nil {
		return "", eris.Wrap(err, "postgres: upsert building")
	}

	return "postgres://buildings/" + id, nil
}
