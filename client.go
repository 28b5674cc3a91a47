package quotefed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the wiki API endpoint queried when none is configured.
const DefaultBaseURL = "https://en.wikiquote.org/w/api.php"

// Client talks to a MediaWiki Action API endpoint. All three remote calls
// the pipeline makes (random page, section outline, section render) go
// through one shared HTTP client with a fixed timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given API endpoint. An empty baseURL
// selects DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// get performs one API call and decodes the JSON body into out. Transport
// failures, non-200 statuses, and undecodable bodies all come back as
// *RemoteError.
func (c *Client) get(ctx context.Context, op string, params url.Values, out any) error {
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", "quotefed/1.0 (random wiki quote fetcher)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("failed to fetch URL: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Op: op, Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
