// Package search implements the web search collaborator: DuckDuckGo's HTML
// endpoint by default, or the Kagi API when a key is configured. Calls are
// bounded by the client's own timeout and always return a result/error pair.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oslek-labs/lookout/internal/httpclient"
	"github.com/oslek-labs/lookout/internal/metrics"
)

const (
	duckDuckGoSearchURL = "https://html.duckduckgo.com/html/"
	kagiSearchURL       = "https://kagi.com/api/v0/search"

	DefaultTimeout = 15 * time.Second
	maxQueryLength = 500
)

// Result is a single ranked search hit.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Desc  string `json:"desc"`
}

type Client struct {
	httpClient *http.Client
	kagiAPIKey string
	duckURL    string
	kagiURL    string
}

type Option func(*Client)

func WithKagiAPIKey(key string) Option {
	return func(c *Client) {
		c.kagiAPIKey = key
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = httpclient.New(httpclient.WithTimeout(d))
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: httpclient.New(httpclient.WithTimeout(DefaultTimeout)),
		duckURL:    duckDuckGoSearchURL,
		kagiURL:    kagiSearchURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns up to count ranked hits for the query, in result order.
func (c *Client) Search(ctx context.Context, query string, count int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if len(query) > maxQueryLength {
		return nil, fmt.Errorf("query too long (max %d characters)", maxQueryLength)
	}
	if count < 1 {
		count = 1
	}

	if c.kagiAPIKey != "" {
		results, err := c.searchKagi(ctx, query, count)
		c.observe("kagi", err)
		return results, err
	}
	results, err := c.searchDuckDuckGo(ctx, query, count)
	c.observe("duckduckgo", err)
	return results, err
}

// Ping performs a lightweight reachability check against the search backend.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.duckURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("search backend unreachable: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("search backend returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) observe(backend string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(backend, status).Inc()
}

const userAgent = "Mozilla/5.0 (compatible; Lookout/1.0)"

func (c *Client) searchDuckDuckGo(ctx context.Context, query string, count int) ([]Result, error) {
	formData := url.Values{}
	formData.Set("q", query)
	formData.Set("b", "")
	formData.Set("kl", "us-en")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.duckURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	results, err := parseResults(resp.Body, count)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no results found for query: %q", query)
	}
	return results, nil
}

// kagiResponse represents the Kagi search API response.
type kagiResponse struct {
	Data []struct {
		T       int    `json:"t"` // 0 = search result, 1 = related searches
		URL     string `json:"url,omitempty"`
		Title   string `json:"title,omitempty"`
		Snippet string `json:"snippet,omitempty"`
	} `json:"data"`
}

func (c *Client) searchKagi(ctx context.Context, query string, count int) ([]Result, error) {
	reqURL := fmt.Sprintf("%s?q=%s&limit=%d", c.kagiURL, url.QueryEscape(query), count)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.kagiAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kagi search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("kagi returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var kagiResp kagiResponse
	if err := json.NewDecoder(resp.Body).Decode(&kagiResp); err != nil {
		return nil, fmt.Errorf("failed to parse kagi response: %w", err)
	}

	var results []Result
	for _, item := range kagiResp.Data {
		if item.T != 0 {
			continue
		}
		if len(results) >= count {
			break
		}
		results = append(results, Result{
			Title: item.Title,
			URL:   item.URL,
			Desc:  item.Snippet,
		})
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no results found for query: %q", query)
	}
	return results, nil
}
