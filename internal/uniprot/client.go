package uniprot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Client defaults
const (
	DefaultBaseURL   = "https://rest.uniprot.org/uniprotkb"
	DefaultTimeout   = 30 * time.Second
	DefaultCacheSize = 1000

	maxErrorBody = 512
)

var (
	// ErrNotFound is returned when UniProt has no entry for the accession
	ErrNotFound = errors.New("uniprot entry not found")
	// ErrInvalidAccession is returned for an empty or malformed accession
	ErrInvalidAccession = errors.New("invalid accession")
)

// Fetcher retrieves UniProt entries
type Fetcher interface {
	Fetch(ctx context.Context, accession string) (*Entry, error)
}

// Config configures a Client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
	Retry     RetryConfig
	Logger    *slog.Logger
}

// Client fetches entries from the UniProtKB REST API. Entries are cached by
// accession; cached entries are shared and must not be modified.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
	cache      *lru.Cache[string, *Entry]
	logger     *slog.Logger
}

// NewClient creates a client, filling zero config values with defaults
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	cache, err := lru.New[string, *Entry](cfg.CacheSize)
	if err != nil {
		cache, _ = lru.New[string, *Entry](DefaultCacheSize)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      cfg.Retry,
		cache:      cache,
		logger:     cfg.Logger,
	}
}

// Fetch returns the entry for accession. A 404 maps to ErrNotFound and is not
// retried; transport failures and 5xx/429 responses are retried with backoff.
func (c *Client) Fetch(ctx context.Context, accession string) (*Entry, error) {
	accession = strings.ToUpper(strings.TrimSpace(accession))
	if !validAccession(accession) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAccession, accession)
	}

	if entry, ok := c.cache.Get(accession); ok {
		return entry, nil
	}

	start := time.Now()
	entry, err := retryWithBackoff(ctx, c.retry, func() (*Entry, error) {
		return c.get(ctx, accession)
	})
	if err != nil {
		c.logger.Warn("uniprot fetch failed", "accession", accession, "error", err)
		return nil, err
	}

	c.logger.Debug("uniprot fetch", "accession", accession, "features", len(entry.Features),
		"duration", time.Since(start))
	c.cache.Add(accession, entry)
	return entry, nil
}

// CacheLen returns the number of cached entries
func (c *Client) CacheLen() int {
	return c.cache.Len()
}

func (c *Client) get(ctx context.Context, accession string) (*Entry, error) {
	u := c.baseURL + "/" + url.PathEscape(accession)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, permanent(fmt.Errorf("%w: %s", ErrNotFound, accession))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, permanent(fmt.Errorf("api error %d: %s", resp.StatusCode, string(body)))
	}

	var entry Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, permanent(fmt.Errorf("decode response: %w", err))
	}
	if entry.PrimaryAccession == "" {
		return nil, permanent(fmt.Errorf("%w: %s (no primary accession in response)", ErrNotFound, accession))
	}
	return &entry, nil
}

func validAccession(s string) bool {
	if s == "" || len(s) > 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
