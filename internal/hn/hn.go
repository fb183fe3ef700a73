// Package hn searches Hacker News stories through the Algolia search API.
package hn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/matheuskafuri/hnstories/internal/story"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the public Algolia search endpoint for Hacker News.
	DefaultEndpoint = "https://hn.algolia.com/api/v1/search"

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 10 * time.Second
)

// Searcher looks up stories matching a search term.
type Searcher interface {
	Search(ctx context.Context, term string) ([]story.Story, error)
}

var _ Searcher = (*Client)(nil)

// Client issues one GET per Search call. It never retries.
type Client struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithTimeout sets the per-request timeout. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRateLimit spaces requests at most rps per second. Requests over the
// limit wait rather than fail. A non-positive rps disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

type searchResponse struct {
	Hits []story.Story `json:"hits"`
}

// Search fetches the hits for term.
func (c *Client) Search(ctx context.Context, term string) ([]story.Story, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	u, err := c.searchURL(term)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searching %q: HTTP %d", term, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if body.Hits == nil {
		body.Hits = []story.Story{}
	}
	return body.Hits, nil
}

func (c *Client) searchURL(term string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("query", term)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
