package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS contact_searches (
	id UUID PRIMARY KEY,
	domain TEXT NOT NULL,
	company TEXT NOT NULL,
	path TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	client_ip TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_contact_searches_created_at ON contact_searches(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_contact_searches_path ON contact_searches(path, created_at DESC);
`

// Postgres is a Catalog backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, pings and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string, maxConns int) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse catalog DSN: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect catalog: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Record(ctx context.Context, e Entry) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO contact_searches (id, domain, company, path, row_count, client_ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
			domain = EXCLUDED.domain, company = EXCLUDED.company, path = EXCLUDED.path,
			row_count = EXCLUDED.row_count, client_ip = EXCLUDED.client_ip, created_at = EXCLUDED.created_at`,
		e.ID, e.Domain, e.Company, e.Path, e.Rows, e.ClientIP, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	var e Entry
	err := p.pool.QueryRow(ctx,
		`SELECT id, domain, company, path, row_count, client_ip, created_at
		 FROM contact_searches WHERE id = $1`, id,
	).Scan(&e.ID, &e.Domain, &e.Company, &e.Path, &e.Rows, &e.ClientIP, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get search: %w", err)
	}
	return e, nil
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, domain, company, path, row_count, client_ip, created_at
		 FROM contact_searches ORDER BY created_at DESC LIMIT $1`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.Domain, &e.Company, &e.Path, &e.Rows, &e.ClientIP, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan searches: %w", err)
	}
	return entries, nil
}

func (p *Postgres) Latest(ctx context.Context, path string) (Entry, error) {
	var e Entry
	err := p.pool.QueryRow(ctx,
		`SELECT id, domain, company, path, row_count, client_ip, created_at
		 FROM contact_searches WHERE path = $1 ORDER BY created_at DESC LIMIT 1`, path,
	).Scan(&e.ID, &e.Domain, &e.Company, &e.Path, &e.Rows, &e.ClientIP, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("latest search: %w", err)
	}
	return e, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
