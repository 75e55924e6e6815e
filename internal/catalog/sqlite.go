package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// AppName names the XDG data subdirectory.
const AppName = "contactfinder"

// sqliteTime is fixed width so created_at sorts lexically.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS searches (
	id TEXT PRIMARY KEY,
	domain TEXT NOT NULL,
	company TEXT NOT NULL,
	path TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	client_ip TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);
CREATE INDEX IF NOT EXISTS idx_searches_path ON searches(path, created_at);
`

// SQLite is a Catalog backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

// DefaultSQLitePath is the catalog file used when no DSN is configured:
// $XDG_DATA_HOME/contactfinder/catalog.db on Linux.
func DefaultSQLitePath() string {
	return filepath.Join(xdg.DataHome, AppName, "catalog.db")
}

// OpenSQLite opens (creating if needed) the catalog file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		path = DefaultSQLitePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, domain, company, path, row_count, client_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			domain = excluded.domain, company = excluded.company, path = excluded.path,
			row_count = excluded.row_count, client_ip = excluded.client_ip, created_at = excluded.created_at`,
		e.ID.String(), e.Domain, e.Company, e.Path, e.Rows, e.ClientIP,
		e.CreatedAt.UTC().Format(sqliteTime),
	)
	if err != nil {
		return fmt.Errorf("record search: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, domain, company, path, row_count, client_ip, created_at
		 FROM searches WHERE id = ?`, id.String())
	e, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get search: %w", err)
	}
	return e, nil
}

func (s *SQLite) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, company, path, row_count, client_ip, created_at
		 FROM searches ORDER BY created_at DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Latest(ctx context.Context, path string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, domain, company, path, row_count, client_ip, created_at
		 FROM searches WHERE path = ? ORDER BY created_at DESC LIMIT 1`, path)
	e, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("latest search: %w", err)
	}
	return e, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(sc scanner) (Entry, error) {
	var (
		e         Entry
		id, stamp string
	)
	if err := sc.Scan(&id, &e.Domain, &e.Company, &e.Path, &e.Rows, &e.ClientIP, &stamp); err != nil {
		return Entry{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	e.ID = parsed
	e.CreatedAt, err = time.Parse(sqliteTime, stamp)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", stamp, err)
	}
	return e, nil
}
