/* external.go
 * Contains the client used to pull raw bout results from an upstream results feed (the scoring table export for an
 * event) so they can be stored as the event's results document
 */

package external

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrBadStatus is returned when the feed answers with anything other than 200
	ErrBadStatus = errors.New("unexpected status from results feed")
	// ErrFeedTooLarge is returned when a feed body, after decompression, is larger than the client accepts
	ErrFeedTooLarge = errors.New("results feed body too large")
)

const (
	defaultUserAgent = "FightRecordsFetcher/1.0"
	defaultTimeout   = 15 * time.Second
	// maxFeedBytes caps a decoded feed body. A full event export is a few hundred KB
	maxFeedBytes = 32 << 20
)

// Client fetches results feeds. All requests made through one client share its rate limiter
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
	maxBytes   int64
}

// NewClient creates a feed client
// Preconditions: Receives the user agent to send (empty uses the default) and the maximum requests per second
// (0 or less disables limiting)
// Postconditions: Returns a ready to use Client
func NewClient(userAgent string, perSecond float64) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(limit, 1),
		maxBytes:   maxFeedBytes,
	}
}

// FetchResults downloads the raw result entries for one event. The feed may answer with a bare JSON array of entries
// or with an object holding them under "results"
// Preconditions: Receives a context and the feed url
// Postconditions: Returns the raw entries, or an error if the request, status or body was bad
func (c *Client) FetchResults(ctx context.Context, url string) ([]map[string]interface{}, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseResults(body)
}

// ParseResults decodes a results feed body
func ParseResults(body []byte) ([]map[string]interface{}, error) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}

	var rawResults []interface{}
	switch r := root.(type) {
	case []interface{}:
		rawResults = r
	case map[string]interface{}:
		list, ok := r["results"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("missing or invalid 'results' field")
		}
		rawResults = list
	default:
		return nil, fmt.Errorf("unexpected results feed shape")
	}

	entries := make([]map[string]interface{}, 0, len(rawResults))
	for i, raw := range rawResults {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("result %d is not an object", i)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	// Create HTTP Request
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Encoding", "gzip")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, response.StatusCode)
	}

	var reader io.Reader = response.Body
	if response.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(response.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	// One byte past the cap tells a body of exactly maxBytes apart from a longer one
	body, err := io.ReadAll(io.LimitReader(reader, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFeedTooLarge, c.maxBytes)
	}
	return body, nil
}
