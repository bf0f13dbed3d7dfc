// Package tmdb is a minimal client for The Movie Database v3 API, covering
// the two calls the collection needs: title search and movie details.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	searchPath = "/search/movie"
	moviePath  = "/movie/"

	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	userAgent           = "filmshelf/1.0"
)

// Error describes a failed call against the metadata service: a transport
// failure, a non-2xx status, or a payload that did not decode.
type Error struct {
	Op     string // "search" or "details"
	Status int    // HTTP status, 0 for transport/decode failures
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("tmdb %s: HTTP status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("tmdb %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Candidate is a search result not yet imported into the collection
type Candidate struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
}

// ReleaseYear returns the release year of the candidate, 0 when unknown
func (c Candidate) ReleaseYear() int {
	return ParseYear(c.ReleaseDate)
}

// MovieDetails holds the fields of a movie details response that map onto a
// collection record
type MovieDetails struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
}

// ReleaseYear returns the release year of the movie, 0 when unknown
func (d *MovieDetails) ReleaseYear() int {
	return ParseYear(d.ReleaseDate)
}

// ParseYear extracts the leading year token of a TMDB date string
// (YYYY-MM-DD). Returns 0 for empty or malformed input.
func ParseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// Config holds configuration for the client
type Config struct {
	// APIKey is the TMDB API key, sent as the api_key query parameter
	APIKey string
	// BaseURL is the API root
	BaseURL string
	// ImageBaseURL is prepended to poster paths to form a complete URL
	ImageBaseURL string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// RateLimit is the maximum requests per second
	RateLimit float64
	// MaxRetries is the maximum number of retry attempts
	MaxRetries int
}

// DefaultConfig returns default client configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      defaultBaseURL,
		ImageBaseURL: defaultImageBaseURL,
		Timeout:      10 * time.Second,
		RateLimit:    4,
		MaxRetries:   3,
	}
}

// Client calls The Movie Database over HTTP with rate limiting and retry
type Client struct {
	client  *http.Client
	limiter *rate.Limiter
	config  *Config
}

// NewClient creates a new TMDB client instance
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("tmdb api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = defaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 4
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}

	// Token bucket limiter; rate.Limit is events per second
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)

	return &Client{
		client:  client,
		limiter: limiter,
		config:  cfg,
	}, nil
}

// SearchMovies searches TMDB by title and returns the candidate list.
// A query with no matches returns an empty slice and no error.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("query", query)
	searchURL := c.config.BaseURL + searchPath + "?" + params.Encode()

	body, err := c.fetchWithRetry(ctx, "search", searchURL)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []Candidate `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Op: "search", Err: fmt.Errorf("decode response: %w", err)}
	}

	log.Debug().Str("query", query).Int("count", len(payload.Results)).Msg("TMDB search completed")
	return payload.Results, nil
}

// MovieDetails fetches the details of a movie by its TMDB id
func (c *Client) MovieDetails(ctx context.Context, id int) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	detailsURL := c.config.BaseURL + moviePath + strconv.Itoa(id) + "?" + params.Encode()

	body, err := c.fetchWithRetry(ctx, "details", detailsURL)
	if err != nil {
		return nil, err
	}

	var details MovieDetails
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, &Error{Op: "details", Err: fmt.Errorf("decode response: %w", err)}
	}
	if details.Title == "" {
		return nil, &Error{Op: "details", Err: fmt.Errorf("response missing title for movie %d", id)}
	}

	return &details, nil
}

// PosterURL joins a poster path onto the configured image base URL.
// Returns "" for an empty path.
func (c *Client) PosterURL(posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return c.config.ImageBaseURL + posterPath
}

// fetchWithRetry fetches a URL with rate limiting and exponential backoff
// retry. Client errors other than 429 are not retried.
func (c *Client) fetchWithRetry(ctx context.Context, op, targetURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
		}

		body, retryable, err := c.fetch(ctx, op, targetURL)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !retryable {
			return nil, err
		}

		if attempt < c.config.MaxRetries {
			// Exponential backoff: 1s, 2s, 4s
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			select {
			case <-ctx.Done():
				return nil, &Error{Op: op, Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}
	}

	return nil, lastErr
}

// fetch performs a single HTTP request. The second return value reports
// whether the failure is worth retrying.
func (c *Client) fetch(ctx context.Context, op, targetURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, false, &Error{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Int("status", resp.StatusCode).
		Str("url", req.URL.Path).
		Msg("TMDB response")

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, &Error{Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, &Error{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, false, nil
}
