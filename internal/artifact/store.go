// Package artifact writes search results as CSV files and serves them back.
//
// Layout under the store root:
//
//	<root>/<Company_Name>/<Company_Name>_contacts.csv
//
// The directory name is the company name with spaces replaced by underscores,
// so searching the same company twice overwrites the earlier file. Writes go
// to a temporary file that is renamed into place while a per-directory lock
// file is held; readers never observe a partially written CSV.
package artifact

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const (
	// FileSuffix is appended to the directory name to form the CSV file name.
	FileSuffix = "_contacts.csv"

	lockName      = ".lock"
	lockRetry     = 25 * time.Millisecond
	dirPerm       = 0o755
	filePerm      = 0o644
	maxNameLength = 200
)

var (
	// ErrInvalidCompany is returned for company names that cannot be used as a
	// single directory name under the root.
	ErrInvalidCompany = errors.New("invalid company name")

	// ErrNotFound is returned by Open for missing files and for any path that
	// is not a contacts CSV under the root.
	ErrNotFound = errors.New("artifact not found")
)

// Artifact describes one written CSV file.
type Artifact struct {
	ID        uuid.UUID
	Company   string
	Dir       string
	Path      string // relative to the store root, slash separated
	Rows      int
	CreatedAt time.Time
}

// FileName is the base name of the CSV file.
func (a Artifact) FileName() string {
	return a.Dir + FileSuffix
}

// Store writes and opens CSV artifacts under a root directory.
type Store struct {
	root string
	now  func() time.Time
}

// NewStore creates the root directory if needed and returns a Store for it.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{root: abs, now: time.Now}, nil
}

// Root returns the absolute root directory.
func (s *Store) Root() string {
	return s.root
}

// DirName maps a company name to its directory name: spaces become
// underscores. Names that are empty, too long, hidden, or that contain path
// separators or NUL bytes are rejected.
func DirName(company string) (string, error) {
	if strings.TrimSpace(company) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidCompany)
	}
	name := strings.ReplaceAll(company, " ", "_")
	switch {
	case len(name) > maxNameLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidCompany, maxNameLength)
	case strings.HasPrefix(name, "."):
		return "", fmt.Errorf("%w: must not start with a dot", ErrInvalidCompany)
	case strings.ContainsAny(name, "/\\\x00"):
		return "", fmt.Errorf("%w: must not contain path separators", ErrInvalidCompany)
	}
	return name, nil
}

// relPath is the slash-separated path of dir's CSV relative to the root.
func relPath(dir string) string {
	return dir + "/" + dir + FileSuffix
}

// Save writes header and rows as the company's CSV, replacing any previous file.
func (s *Store) Save(ctx context.Context, company string, header []string, rows [][]string) (Artifact, error) {
	dir, err := DirName(company)
	if err != nil {
		return Artifact{}, err
	}

	dirPath := filepath.Join(s.root, dir)
	if err := os.MkdirAll(dirPath, dirPerm); err != nil {
		return Artifact{}, fmt.Errorf("create company dir: %w", err)
	}

	lock := flock.New(filepath.Join(dirPath, lockName))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return Artifact{}, fmt.Errorf("lock %s: %w", dir, err)
	}
	if !locked {
		return Artifact{}, fmt.Errorf("lock %s: not acquired", dir)
	}
	defer lock.Unlock()

	target := filepath.Join(dirPath, dir+FileSuffix)
	if err := writeCSV(dirPath, target, header, rows); err != nil {
		return Artifact{}, err
	}

	return Artifact{
		ID:        uuid.New(),
		Company:   company,
		Dir:       dir,
		Path:      relPath(dir),
		Rows:      len(rows),
		CreatedAt: s.now().UTC(),
	}, nil
}

func writeCSV(dirPath, target string, header []string, rows [][]string) (err error) {
	tmp, err := os.CreateTemp(dirPath, ".contacts-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("replace csv: %w", err)
	}
	return nil
}

// Open opens a CSV by its root-relative path. Only paths of the exact form
// <dir>/<dir>_contacts.csv are accepted.
func (s *Store) Open(name string) (*os.File, os.FileInfo, error) {
	full, err := s.resolve(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("open artifact: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// resolve validates name and maps it to an absolute path inside the root.
func (s *Store) resolve(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	dir, _, ok := strings.Cut(name, "/")
	if !ok {
		return "", ErrNotFound
	}
	if _, err := DirName(dir); err != nil || strings.Contains(dir, " ") {
		return "", ErrNotFound
	}
	if name != relPath(dir) {
		return "", ErrNotFound
	}

	full := filepath.Join(s.root, dir, dir+FileSuffix)
	back, err := filepath.Rel(s.root, full)
	if err != nil || strings.HasPrefix(back, "..") {
		return "", ErrNotFound
	}
	return full, nil
}
