package ergast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/racevision/ingest-service-go/log"
)

const (
	DefaultBaseURL  = "https://api.jolpi.ca/ergast/f1"
	DefaultPageSize = 100
	DefaultMaxTries = 4
)

// FetchError signals that an endpoint could not be fetched even after
// retries. It is non-fatal at writer level: the affected sub-scope is
// recorded and ingestion continues.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type httpStatusError struct {
	status int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d", e.status)
}

type Option func(c *Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithPageSize(size int) Option {
	return func(c *Client) { c.pageSize = size }
}

func WithMaxTries(tries int) Option {
	return func(c *Client) { c.maxTries = tries }
}

func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.l = l }
}

// Client fetches data from an Ergast compatible API. It paginates
// transparently, rate limits all requests and retries transient
// failures with exponential backoff. Apart from the retry counters
// local to a single page request it carries no state across calls.
type Client struct {
	http     *http.Client
	baseURL  string
	pageSize int
	maxTries int
	limiter  *rate.Limiter
	l        *log.Logger
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		baseURL:  DefaultBaseURL,
		pageSize: DefaultPageSize,
		maxTries: DefaultMaxTries,
		limiter:  rate.NewLimiter(rate.Limit(3), 1),
		l:        log.Default().Named("ergast"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves all pages for the logical request denoted by endpoint
// (for example "2023/5/results"). The returned slice holds one MRData
// per page, in request order.
func (c *Client) Fetch(ctx context.Context, endpoint string) ([]*MRData, error) {
	var pages []*MRData
	offset := 0
	for {
		page, err := c.fetchPage(ctx, endpoint, offset)
		if err != nil {
			return nil, &FetchError{Endpoint: endpoint, Err: err}
		}
		pages = append(pages, page)
		total, err := strconv.Atoi(page.Total)
		if err != nil {
			return nil, &FetchError{
				Endpoint: endpoint,
				Err:      fmt.Errorf("invalid total %q: %w", page.Total, err),
			}
		}
		// advance by what the server actually served: the limit
		// parameter is capped upstream, so a page may hold fewer
		// records than requested
		served := page.recordCount()
		if served == 0 {
			return pages, nil
		}
		offset += served
		if offset >= total {
			return pages, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, endpoint string, offset int) (
	*MRData, error,
) {
	url := fmt.Sprintf("%s/%s.json?limit=%d&offset=%d",
		c.baseURL, endpoint, c.pageSize, offset)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	return backoff.Retry(ctx, func() (*MRData, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		page, err := c.doRequest(ctx, url)
		if err != nil {
			var statusErr *httpStatusError
			if errors.As(err, &statusErr) && !retryableStatus(statusErr.status) {
				return nil, backoff.Permanent(err)
			}
			c.l.Warn("request failed, retrying",
				log.String("url", url), log.ErrorField(err))
			return nil, err
		}
		return page, nil
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.maxTries)),
	)
}

func (c *Client) doRequest(ctx context.Context, url string) (*MRData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &httpStatusError{status: resp.StatusCode}
	}
	var wrapper ResponseWrapper
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, err
	}
	if wrapper.MRData == nil {
		return nil, errors.New("response without MRData attribute")
	}
	return wrapper.MRData, nil
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
