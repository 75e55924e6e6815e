package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JonMunkholm/contactfinder/internal/artifact"
	"github.com/JonMunkholm/contactfinder/internal/catalog"
	"github.com/JonMunkholm/contactfinder/internal/hunter"
	"github.com/JonMunkholm/contactfinder/internal/logging"
)

// CatalogTimeout bounds the catalog write that follows a saved artifact.
var CatalogTimeout = 5 * time.Second

// Options tunes a Service.
type Options struct {
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service runs contact searches and serves their artifacts.
type Service struct {
	searcher Searcher
	store    ArtifactStore
	catalog  catalog.Catalog
	limiter  *SearchLimiter
	validate *validator.Validate
}

// NewService wires a Service. A nil catalog falls back to an in-memory one.
func NewService(searcher Searcher, store ArtifactStore, cat catalog.Catalog, opts Options) *Service {
	if cat == nil {
		cat = catalog.NewMemory()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Service{
		searcher: searcher,
		store:    store,
		catalog:  cat,
		limiter:  NewSearchLimiter(opts.MaxConcurrent, opts.MaxWait),
		validate: v,
	}
}

// Search validates req, queries the API, writes the CSV and records it in
// the catalog. Nothing is written unless at least one email was found.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	req, records, err := s.find(ctx, req)
	if err != nil {
		return nil, err
	}

	art, err := s.store.Save(ctx, req.Company, Header, Rows(records))
	if err != nil {
		return nil, &WriteError{Err: err}
	}

	s.record(ctx, req, art)

	return &SearchResult{Request: req, Records: records, Artifact: art}, nil
}

// Find runs the search without writing an artifact.
func (s *Service) Find(ctx context.Context, req SearchRequest) ([]Record, error) {
	_, records, err := s.find(ctx, req)
	return records, err
}

func (s *Service) find(ctx context.Context, req SearchRequest) (SearchRequest, []Record, error) {
	req = req.Normalize()
	if err := s.validateRequest(req); err != nil {
		return req, nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return req, nil, err
	}
	defer s.limiter.Release()

	logger := logging.WithFields(ctx, "domain", req.Domain, "company", req.Company)
	start := time.Now()

	emails, err := s.searcher.DomainSearch(ctx, req.Domain)
	if errors.Is(err, hunter.ErrNoResults) {
		logger.Info("no emails found", "duration", time.Since(start))
		return req, nil, &NoResultsError{Domain: req.Domain, Company: req.Company}
	}
	if err != nil {
		return req, nil, fmt.Errorf("search %s: %w", req.Domain, err)
	}

	logger.Debug("domain search done", "emails", len(emails), "duration", time.Since(start))
	return req, Project(emails, req.Company), nil
}

func (s *Service) validateRequest(req SearchRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return err
		}
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return &ValidationError{Field: fe.Field(), Err: ErrMissingInput}
			}
		}
		fe := verrs[0]
		if fe.Field() == "domain" {
			return &ValidationError{Field: fe.Field(), Err: ErrInvalidDomain}
		}
		return &ValidationError{Field: fe.Field(), Err: fmt.Errorf("%w: failed %s", artifact.ErrInvalidCompany, fe.Tag())}
	}

	if _, err := artifact.DirName(req.Company); err != nil {
		return &ValidationError{Field: "company_name", Err: err}
	}
	return nil
}

// record indexes art in the catalog. Failures are logged, not returned:
// the CSV already exists and remains downloadable by path.
func (s *Service) record(ctx context.Context, req SearchRequest, art artifact.Artifact) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CatalogTimeout)
	defer cancel()

	entry := catalog.Entry{
		ID:        art.ID,
		Domain:    req.Domain,
		Company:   req.Company,
		Path:      art.Path,
		Rows:      art.Rows,
		ClientIP:  ClientIPFromContext(ctx),
		CreatedAt: art.CreatedAt,
	}
	if err := s.catalog.Record(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("catalog record failed",
			"artifact_id", art.ID,
			"path", art.Path,
			"error", err,
		)
	}
}

// OpenArtifact opens a CSV by its path relative to the output root.
func (s *Service) OpenArtifact(relPath string) (*os.File, os.FileInfo, error) {
	return s.store.Open(relPath)
}

// LookupArtifact resolves a catalog ID to its entry and open file.
//
// Every search for a company rewrites the same file, so an older ID is only
// served while the newest save at that path was for the same domain.
func (s *Service) LookupArtifact(ctx context.Context, id uuid.UUID) (catalog.Entry, *os.File, os.FileInfo, error) {
	entry, err := s.catalog.Get(ctx, id)
	if err != nil {
		return catalog.Entry{}, nil, nil, err
	}
	latest, err := s.catalog.Latest(ctx, entry.Path)
	if err != nil {
		return entry, nil, nil, err
	}
	if latest.ID != entry.ID && latest.Domain != entry.Domain {
		return entry, nil, nil, fmt.Errorf("artifact %s replaced by a search for %s: %w", id, latest.Domain, catalog.ErrNotFound)
	}
	f, info, err := s.store.Open(entry.Path)
	if err != nil {
		return entry, nil, nil, err
	}
	return entry, f, info, nil
}

// RecentSearches lists the newest catalog entries.
func (s *Service) RecentSearches(ctx context.Context, limit int) ([]catalog.Entry, error) {
	return s.catalog.Recent(ctx, limit)
}

// LimiterStatus reports search slot usage.
func (s *Service) LimiterStatus() SearchLimiterStatus {
	return s.limiter.Status()
}

// Drain waits for in-flight searches to finish or ctx to expire.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
