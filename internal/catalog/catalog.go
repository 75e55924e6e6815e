// Package catalog indexes written CSV artifacts by a generated ID so they can
// be listed and downloaded without trusting user-supplied paths.
//
// Three backends share the Catalog interface:
//
//   - memory: process-local, lost on restart (default)
//   - sqlite: a single file, see OpenSQLite
//   - postgres: a pgx pool, see OpenPostgres
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for unknown IDs.
var ErrNotFound = errors.New("catalog entry not found")

// DefaultListLimit bounds Recent when the caller passes a non-positive limit.
const DefaultListLimit = 20

// Entry is one recorded search that produced an artifact.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Domain    string    `json:"domain"`
	Company   string    `json:"company"`
	Path      string    `json:"path"`
	Rows      int       `json:"rows"`
	ClientIP  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Catalog stores and retrieves entries.
type Catalog interface {
	Record(ctx context.Context, e Entry) error
	Get(ctx context.Context, id uuid.UUID) (Entry, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	// Latest returns the newest entry written to path.
	Latest(ctx context.Context, path string) (Entry, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver   string
	DSN      string
	MaxConns int
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Catalog, error) {
	switch strings.ToLower(opts.Driver) {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(ctx, opts.DSN)
	case "postgres":
		return OpenPostgres(ctx, opts.DSN, opts.MaxConns)
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", opts.Driver)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
