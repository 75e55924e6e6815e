package hunter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, APIKey: "test-key", Timeout: 2 * time.Second})
	return c, &calls
}

func TestDomainSearch_ReturnsEmails(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/domain-search", r.URL.Path)
		assert.Equal(t, "acme.com", r.URL.Query().Get("domain"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"emails":[
			{"first_name":"Ada","last_name":"Lovelace","value":"ada@acme.com","position":"CTO"},
			{"value":"info@acme.com","first_name":null}
		]}}`))
	})

	emails, err := c.DomainSearch(context.Background(), "acme.com")
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	require.NotNil(t, emails[0].FirstName)
	assert.Equal(t, "Ada", *emails[0].FirstName)
	assert.Equal(t, "CTO", *emails[0].Position)
	assert.Nil(t, emails[1].FirstName)
	assert.Nil(t, emails[1].Position)
	assert.Equal(t, "info@acme.com", *emails[1].Value)
}

func TestDomainSearch_NoResults(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty list", `{"data":{"emails":[]}}`},
		{"missing emails", `{"data":{"domain":"acme.com"}}`},
		{"missing data", `{"meta":{}}`},
		{"null data", `{"data":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			emails, err := c.DomainSearch(context.Background(), "acme.com")
			assert.ErrorIs(t, err, ErrNoResults)
			assert.Nil(t, emails)
		})
	}
}

func TestDomainSearch_MissingAPIKeySkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	assert.False(t, c.HasAPIKey())

	_, err := c.DomainSearch(context.Background(), "acme.com")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDomainSearch_StatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors":[{"id":"server_error","code":500,"details":"Something went wrong"}]}`))
	})

	_, err := c.DomainSearch(context.Background(), "acme.com")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "Something went wrong", se.Detail)
	assert.Contains(t, err.Error(), "500")
	assert.NotContains(t, err.Error(), "test-key")
}

func TestDomainSearch_StatusErrorWithoutJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.DomainSearch(context.Background(), "acme.com")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Empty(t, se.Detail)
}

func TestDomainSearch_InvalidJSON(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":`))
	})

	_, err := c.DomainSearch(context.Background(), "acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestDomainSearch_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, APIKey: "very-secret", Timeout: time.Second})
	_, err := c.DomainSearch(context.Background(), "acme.com")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "very-secret")
	assert.True(t, strings.HasPrefix(err.Error(), "domain search request"))

	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestDomainSearch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	_, err := c.DomainSearch(context.Background(), "acme.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDomainSearch_CallerCancellation(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.DomainSearch(ctx, "acme.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestDomainSearch_ConcurrentSameDomainShareCall(t *testing.T) {
	gate := make(chan struct{})
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-gate
		_, _ = w.Write([]byte(`{"data":{"emails":[{"value":"a@acme.com"}]}}`))
	})

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.DomainSearch(context.Background(), "acme.com")
		}(i)
	}

	// Give every goroutine time to join the flight before the server answers.
	time.Sleep(100 * time.Millisecond)
	close(gate)
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestDomainSearch_SharedCallSurvivesFirstCallerCancel(t *testing.T) {
	gate := make(chan struct{})
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-gate
		_, _ = w.Write([]byte(`{"data":{"emails":[{"value":"a@acme.com"}]}}`))
	})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.DomainSearch(firstCtx, "acme.com")
		firstErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	type result struct {
		emails []Email
		err    error
	}
	second := make(chan result, 1)
	go func() {
		emails, err := c.DomainSearch(context.Background(), "acme.com")
		second <- result{emails, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(gate)
	got := <-second
	require.NoError(t, got.err)
	require.Len(t, got.emails, 1)
	assert.Equal(t, "a@acme.com", *got.emails[0].Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestDomainSearch_Throttled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"emails":[{"value":"a@acme.com"}]}}`))
	})
	c2 := New(Config{BaseURL: c.baseURL, APIKey: "k", RequestsPerSecond: 10, Burst: 1, Timeout: time.Second})

	start := time.Now()
	for _, d := range []string{"a.com", "b.com", "c.com"} {
		_, err := c2.DomainSearch(context.Background(), d)
		require.NoError(t, err)
	}
	// Burst 1 at 10/s: the 2nd and 3rd calls wait ~100ms each.
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestStatusError_Message(t *testing.T) {
	e := &StatusError{StatusCode: 401, Status: "401 Unauthorized", Detail: "No user found for the API key supplied"}
	assert.Equal(t, "domain search failed: 401 Unauthorized: No user found for the API key supplied", e.Error())

	e = &StatusError{StatusCode: 500, Status: "500 Internal Server Error"}
	assert.Equal(t, "domain search failed: 500 Internal Server Error", e.Error())
}
