// Package store talks to the remote object store holding the suppliers,
// products and quotes collections.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/quotesync/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Record is one untyped remote object. The gateway maps records to domain
// entities per collection.
type Record = map[string]any

const (
	defaultPageSize    = 100
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultCallTimeout = 15 * time.Second

	// maxPages bounds the pagination loop against a misbehaving server.
	maxPages = 1000
)

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	PageSize          int
	MaxAttempts       int
	BaseDelay         time.Duration
	CallTimeout       time.Duration
	RequestsPerSecond float64
}

// Client handles communication with the remote object store API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	appID       string
	pageSize    int
	maxAttempts int
	baseDelay   time.Duration
	callTimeout time.Duration
	rateLimiter *rate.Limiter
}

// NewClient creates a remote store client authenticated by a static
// credential header.
func NewClient(baseURL, apiKey, appID string, opts Options) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaultBaseDelay
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 10
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		apiKey:      apiKey,
		appID:       appID,
		pageSize:    opts.PageSize,
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		callTimeout: opts.CallTimeout,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 10),
	}
}

// listEnvelope is the store's paginated list response. Pointer fields let us
// tell a missing envelope field from a zero value.
type listEnvelope struct {
	Results   []Record `json:"results"`
	Remaining *int     `json:"remaining"`
	Cursor    *string  `json:"cursor"`
}

// FetchAll retrieves every record of a collection via cursor pagination.
// Termination, in priority order: an empty page, remaining hitting zero, a
// stalled cursor with remaining still positive (logged, accumulated results
// returned), or the hard page ceiling.
func (c *Client) FetchAll(ctx context.Context, collection string, filters url.Values) ([]Record, error) {
	var (
		records []Record
		cursor  string
	)

	for page := 1; ; page++ {
		env, err := c.fetchPage(ctx, collection, filters, cursor)
		if err != nil {
			return nil, err
		}
		records = append(records, env.Results...)

		if len(env.Results) == 0 {
			log.Printf("[Store] fetch %s: empty page %d, done (%d records)", collection, page, len(records))
			return records, nil
		}
		if *env.Remaining <= 0 {
			log.Printf("[Store] fetch %s: remaining exhausted after page %d (%d records)", collection, page, len(records))
			return records, nil
		}
		if *env.Cursor == cursor {
			// Stall guard: stop with what we have rather than loop forever.
			log.Printf("[Store] fetch %s: %v at page %d with %d remaining, stopping (%d records)",
				collection, domain.ErrPaginationStall, page, *env.Remaining, len(records))
			return records, nil
		}
		if page >= maxPages {
			log.Printf("[Store] fetch %s: page ceiling %d reached, stopping (%d records)", collection, maxPages, len(records))
			return records, nil
		}
		cursor = *env.Cursor
	}
}

// fetchPage requests one page, with the retry policy applied.
func (c *Client) fetchPage(ctx context.Context, collection string, filters url.Values, cursor string) (*listEnvelope, error) {
	params := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	params.Set("limit", fmt.Sprintf("%d", c.pageSize))
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	reqURL := fmt.Sprintf("%s/collections/%s?%s", c.baseURL, collection, params.Encode())

	var env listEnvelope
	err := c.withRetry(ctx, "GET "+collection, func(ctx context.Context) error {
		body, err := c.do(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
		if env.Results == nil || env.Remaining == nil || env.Cursor == nil {
			return fmt.Errorf("%w: missing results, remaining or cursor", domain.ErrMalformedResponse)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// Create inserts a record into a collection and returns the created record.
func (c *Client) Create(ctx context.Context, collection string, payload any) (Record, error) {
	reqURL := fmt.Sprintf("%s/collections/%s", c.baseURL, collection)
	return c.write(ctx, http.MethodPost, "POST "+collection, reqURL, payload)
}

// Update partially updates a record and returns the updated record.
func (c *Client) Update(ctx context.Context, collection, id string, payload any) (Record, error) {
	reqURL := fmt.Sprintf("%s/collections/%s/%s", c.baseURL, collection, url.PathEscape(id))
	return c.write(ctx, http.MethodPatch, "PATCH "+collection, reqURL, payload)
}

func (c *Client) write(ctx context.Context, method, op, reqURL string, payload any) (Record, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	var record Record
	err = c.withRetry(ctx, op, func(ctx context.Context) error {
		body, err := c.do(ctx, method, reqURL, encoded)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &record); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// do executes a single HTTP attempt with credential headers and maps
// non-2xx statuses to errors.
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("X-Application-Id", c.appID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrRecordNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode, body: string(respBody)}
	}
	return respBody, nil
}

// statusError carries a non-2xx HTTP status so the retry predicate can
// distinguish transient from permanent failures.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("store returned status %d: %s", e.code, e.body)
}

// retryable reports whether an attempt error is worth repeating: network
// failures, 5xx and 429. Malformed responses, not-found and other 4xx are
// permanent.
func retryable(err error) bool {
	if errors.Is(err, domain.ErrMalformedResponse) || errors.Is(err, domain.ErrRecordNotFound) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	return true
}

// withRetry runs fn up to maxAttempts times with a linearly increasing delay
// between attempts and a per-attempt timeout. The final failure wraps the
// last underlying error as a store failure.
func (c *Client) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}

		lastErr = err
		log.Printf("[Store] %s failed (attempt %d/%d): %v", op, attempt, c.maxAttempts, err)
		if attempt < c.maxAttempts {
			time.Sleep(time.Duration(attempt) * c.baseDelay)
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreFailure, lastErr)
}
