package core

import (
	"context"
	"os"
	"strings"

	"golang.org/x/net/idna"

	"github.com/JonMunkholm/contactfinder/internal/artifact"
	"github.com/JonMunkholm/contactfinder/internal/hunter"
)

// Searcher looks up the emails known for a domain.
// Satisfied by *hunter.Client.
type Searcher interface {
	DomainSearch(ctx context.Context, domain string) ([]hunter.Email, error)
}

// ArtifactStore persists and opens CSV artifacts.
// Satisfied by *artifact.Store.
type ArtifactStore interface {
	Save(ctx context.Context, company string, header []string, rows [][]string) (artifact.Artifact, error)
	Open(relPath string) (*os.File, os.FileInfo, error)
}

// SearchRequest is one form submission.
type SearchRequest struct {
	Domain  string `json:"domain" validate:"required,hostname_rfc1123"`
	Company string `json:"company_name" validate:"required,max=200"`
}

// Normalize trims surrounding whitespace from both fields and converts an
// internationalized domain to its ASCII (punycode) form. A domain idna
// rejects is left as typed for validation to report.
func (r SearchRequest) Normalize() SearchRequest {
	domain := strings.TrimSpace(r.Domain)
	if ascii, err := idna.Lookup.ToASCII(domain); err == nil {
		domain = ascii
	}
	return SearchRequest{
		Domain:  domain,
		Company: strings.TrimSpace(r.Company),
	}
}

// Record is one CSV row.
type Record struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	JobTitle  string `json:"job_title"`
	Company   string `json:"company"`
}

// Row returns the record's columns in Header order.
func (r Record) Row() []string {
	return []string{r.FirstName, r.LastName, r.Email, r.JobTitle, r.Company}
}

// SearchResult is the outcome of a successful search.
type SearchResult struct {
	Request  SearchRequest
	Records  []Record
	Artifact artifact.Artifact
}
