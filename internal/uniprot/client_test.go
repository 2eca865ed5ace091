package uniprot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entryJSON = `{
  "primaryAccession": "P12345",
  "uniProtkbId": "TEST_HUMAN",
  "proteinDescription": {"recommendedName": {"fullName": {"value": "Test receptor"}}},
  "sequence": {"value": "MCNATCKNGSC", "length": 11},
  "features": [
    {"type": "Glycosylation", "description": "N-linked (GlcNAc...) asparagine", "location": {"start": {"value": 3}, "end": {"value": 3}}},
    {"type": "Disulfide bond", "description": "", "location": {"start": {"value": 2}, "end": {"value": 6}}}
  ]
}`

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestClient_Fetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/uniprotkb/P12345", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(entryJSON))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/uniprotkb/", Retry: fastRetry()})

	entry, err := c.Fetch(context.Background(), " p12345 ")
	require.NoError(t, err)
	assert.Equal(t, "P12345", entry.PrimaryAccession)
	assert.Equal(t, "Test receptor", entry.ProteinDescription.Name())
	assert.Len(t, entry.Features, 2)

	// Second fetch is served from cache
	_, err = c.Fetch(context.Background(), "P12345")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.CacheLen())
}

func TestClient_FetchNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: fastRetry()})
	_, err := c.Fetch(context.Background(), "Q99999")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load(), "404 must not be retried")
	assert.Equal(t, 0, c.CacheLen())
}

func TestClient_FetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(entryJSON))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: fastRetry()})
	entry, err := c.Fetch(context.Background(), "P12345")
	require.NoError(t, err)
	assert.Equal(t, "TEST_HUMAN", entry.UniProtKBID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_FetchGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: fastRetry()})
	_, err := c.Fetch(context.Background(), "P12345")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api error 500")
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_FetchBadRequestNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Retry: fastRetry()})
	_, err := c.Fetch(context.Background(), "P12345")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_FetchInvalidAccession(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	for _, acc := range []string{"", "   ", "P1/../x", "P 12"} {
		_, err := c.Fetch(context.Background(), acc)
		assert.ErrorIs(t, err, ErrInvalidAccession, acc)
	}
}

func TestClient_FetchCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(Config{BaseURL: srv.URL, Retry: RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second, Multiplier: 1}})
	_, err := c.Fetch(ctx, "P12345")
	assert.ErrorIs(t, err, context.Canceled)
}
