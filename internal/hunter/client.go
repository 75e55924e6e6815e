// Package hunter is a client for the Hunter.io domain-search API.
//
// A Client issues one GET per search, throttled by a token bucket and
// deduplicated so concurrent searches for the same domain share a single
// upstream call. It never retries.
package hunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.hunter.io/v2"

// maxErrorBody caps how much of a failed response is read for its detail message.
const maxErrorBody = 64 << 10

var (
	// ErrMissingAPIKey is returned before any network call when no key is configured.
	ErrMissingAPIKey = errors.New("API key not found. Please set HUNTER_API_KEY in your environment")

	// ErrNoResults means the API answered successfully but listed no emails.
	// It is a distinct outcome, not a failure of the call.
	ErrNoResults = errors.New("no emails returned")
)

// StatusError reports a non-2xx response from the API.
type StatusError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("domain search failed: %s", e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// TransportError reports a request that never produced a response.
// The wrapped error has the request URL stripped, so it never carries the key.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "domain search request: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Email is one entry of data.emails. Fields are nil when absent or null.
type Email struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Value     *string `json:"value"`
	Position  *string `json:"position"`
}

type domainSearchResponse struct {
	Data *struct {
		Emails []Email `json:"emails"`
	} `json:"data"`
}

type errorResponse struct {
	Errors []struct {
		ID      string `json:"id"`
		Code    int    `json:"code"`
		Details string `json:"details"`
	} `json:"errors"`
}

// Config holds client settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond int
	Burst             int
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client performs domain searches.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	limiter *rate.Limiter
	group   singleflight.Group
}

// New creates a Client. The API key is captured here; an empty key is allowed
// and makes every search fail fast with ErrMissingAPIKey.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: cfg.Timeout,
		http:    &http.Client{},
		limiter: rate.NewLimiter(limit, burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasAPIKey reports whether searches can reach the API at all.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// DomainSearch returns the emails the API lists for domain.
// It returns ErrNoResults when data.emails is absent or empty.
func (c *Client) DomainSearch(ctx context.Context, domain string) ([]Email, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The flight is shared, so it must not die with whichever caller started
	// it. It stays bounded by c.timeout; each caller still returns as soon as
	// its own ctx is done. Callers get their own slice header; the Email
	// values themselves are never mutated.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(domain, func() (any, error) {
		return c.domainSearch(flightCtx, domain)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		emails := res.Val.([]Email)
		return append([]Email(nil), emails...), nil
	}
}

func (c *Client) domainSearch(ctx context.Context, domain string) ([]Email, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("domain search throttled: %w", err)
	}

	q := url.Values{}
	q.Set("domain", domain)
	q.Set("api_key", c.apiKey)
	endpoint := c.baseURL + "/domain-search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: redact(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var body domainSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode domain search response: %w", err)
	}

	if body.Data == nil || len(body.Data.Emails) == 0 {
		return nil, ErrNoResults
	}
	return body.Data.Emails, nil
}

func statusError(resp *http.Response) *StatusError {
	se := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	if se.Status == "" {
		se.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return se
	}
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 {
		se.Detail = er.Errors[0].Details
	}
	return se
}

// redact strips the request URL (which carries the API key) from transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
