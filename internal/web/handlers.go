package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/contactfinder/internal/artifact"
	"github.com/JonMunkholm/contactfinder/internal/catalog"
	"github.com/JonMunkholm/contactfinder/internal/core"
	"github.com/JonMunkholm/contactfinder/internal/logging"
	"github.com/JonMunkholm/contactfinder/internal/web/templates"
)

const (
	// recentOnIndex is how many catalog entries the index page lists.
	recentOnIndex = 10

	// maxBodySize caps JSON and form request bodies.
	maxBodySize = 64 << 10

	downloadPrefix = "/download/"
)

// handleIndex renders the empty search form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, templates.IndexParams{})
}

// handleSearchForm runs a search from the form and re-renders the page with
// either the results or the error.
func (s *Server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		s.renderIndex(w, r, http.StatusBadRequest, templates.IndexParams{
			Error: &templates.Alert{Message: "The form could not be read.", Action: "Please try again", Code: "VAL001"},
		})
		return
	}

	req := core.SearchRequest{
		Domain:  r.PostFormValue("domain"),
		Company: r.PostFormValue("company_name"),
	}
	params := templates.IndexParams{
		Domain:  strings.TrimSpace(req.Domain),
		Company: strings.TrimSpace(req.Company),
	}

	res, err := s.service.Search(r.Context(), req)
	if err != nil {
		msg := logError(r, err)
		params.Error = &templates.Alert{Message: msg.Message, Action: msg.Action, Code: msg.Code}
		s.renderIndex(w, r, statusFor(msg.Code), params)
		return
	}

	logging.FromContext(r.Context()).Info("search complete",
		"domain", res.Request.Domain,
		"company", res.Request.Company,
		"rows", res.Artifact.Rows,
		"artifact_id", res.Artifact.ID,
	)

	params.Results = &templates.Results{
		Contacts:    toContacts(res.Records),
		CSVPath:     res.Artifact.Path,
		DownloadURL: downloadURL(res.Artifact.Path),
		ArtifactURL: artifactURL(res.Artifact.ID),
	}
	s.renderIndex(w, r, http.StatusOK, params)
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, p templates.IndexParams) {
	p.Recent = s.recent(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Index(p).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// recent lists catalog entries for the index page. A catalog failure only
// hides the list.
func (s *Server) recent(r *http.Request) []templates.RecentSearch {
	entries, err := s.service.RecentSearches(r.Context(), recentOnIndex)
	if err != nil {
		logging.FromContext(r.Context()).Warn("list recent searches", "error", err)
		return nil
	}
	out := make([]templates.RecentSearch, len(entries))
	for i, e := range entries {
		out[i] = templates.RecentSearch{
			Company:     e.Company,
			Domain:      e.Domain,
			Rows:        e.Rows,
			CreatedAt:   e.CreatedAt,
			ArtifactURL: artifactURL(e.ID),
		}
	}
	return out
}

// searchResponse is the JSON body of a successful POST /api/search.
type searchResponse struct {
	Domain      string        `json:"domain"`
	Company     string        `json:"company_name"`
	Count       int           `json:"count"`
	Records     []core.Record `json:"records"`
	ArtifactID  uuid.UUID     `json:"artifact_id"`
	Path        string        `json:"path"`
	DownloadURL string        `json:"download_url"`
	ArtifactURL string        `json:"artifact_url"`
}

// handleSearchAPI is the JSON twin of the search form.
func (s *Server) handleSearchAPI(w http.ResponseWriter, r *http.Request) {
	var req core.SearchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondErrorJSON(w, core.UserMessage{
			Message: "Request body must be a JSON object with domain and company_name.",
			Action:  "Fix the request body and retry",
			Code:    "VAL001",
		}, http.StatusBadRequest)
		return
	}

	res, err := s.service.Search(r.Context(), req)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Domain:      res.Request.Domain,
		Company:     res.Request.Company,
		Count:       len(res.Records),
		Records:     res.Records,
		ArtifactID:  res.Artifact.ID,
		Path:        res.Artifact.Path,
		DownloadURL: downloadURL(res.Artifact.Path),
		ArtifactURL: artifactURL(res.Artifact.ID),
	})
}

// handleListSearches returns recent catalog entries as JSON.
func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", catalog.DefaultListLimit)
	if limit > 100 {
		limit = 100
	}

	entries, err := s.service.RecentSearches(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []catalog.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": entries})
}

// handleDownload streams a CSV by its path under the output root.
// Anything that is not a contacts CSV under the root is a 404.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, downloadPrefix)

	f, info, err := s.service.OpenArtifact(rel)
	if err != nil {
		respondError(w, r, err, notFoundOr500(err))
		return
	}
	defer f.Close()

	serveCSV(w, r, f, info)
}

// handleArtifact streams a CSV by its catalog ID.
func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, fmt.Errorf("parse artifact id: %w", catalog.ErrNotFound), http.StatusNotFound)
		return
	}

	_, f, info, err := s.service.LookupArtifact(r.Context(), id)
	if err != nil {
		respondError(w, r, err, notFoundOr500(err))
		return
	}
	defer f.Close()

	serveCSV(w, r, f, info)
}

// handleHealth reports liveness plus search slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"api_key_configured": s.cfg.Hunter.APIKey != "",
		"searches":           s.service.LimiterStatus(),
		"time":               time.Now().UTC(),
	})
}

func serveCSV(w http.ResponseWriter, r *http.Request, f *os.File, info os.FileInfo) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, info.Name()))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func notFoundOr500(err error) int {
	if errors.Is(err, artifact.ErrNotFound) || errors.Is(err, catalog.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func downloadURL(relPath string) string {
	dir, file, _ := strings.Cut(relPath, "/")
	return downloadPrefix + url.PathEscape(dir) + "/" + url.PathEscape(file)
}

func artifactURL(id uuid.UUID) string {
	return "/artifacts/" + id.String()
}

func toContacts(records []core.Record) []templates.Contact {
	out := make([]templates.Contact, len(records))
	for i, rec := range records {
		out[i] = templates.Contact(rec)
	}
	return out
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
