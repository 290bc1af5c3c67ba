// Package postcodes looks up UK postcode metadata via postcodes.io, used to
// backfill a town name when geocoding produced a postcode but no settlement.
package postcodes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const lookupURL = "https://api.postcodes.io/postcodes/"

// Client queries postcodes.io.
type Client struct {
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a postcodes.io client with a bounded timeout.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lookupResponse is the postcodes.io lookup body.
type lookupResponse struct {
	Status int `json:"status"`
	Result struct {
		AdminDistrict string `json:"admin_district"`
		Parish        string `json:"parish"`
		AdminWard     string `json:"admin_ward"`
	} `json:"result"`
}

// TownForPostcode resolves a postcode to its admin district, parish or ward,
// in that preference order. Returns "" when the postcode is unknown or the
// service fails.
func (c *Client) TownForPostcode(ctx context.Context, postcode string) (string, error) {
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL+url.PathEscape(postcode), nil)
	if err != nil {
		return "", eris.Wrap(err, "postcodes: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "postcodes: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("postcodes: status %d for %s", resp.StatusCode, postcode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "postcodes: read body")
	}

	var lookup lookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return "", eris.Wrap(err, "postcodes: parse response")
	}
	if lookup.Status != http.StatusOK {
		return "", nil
	}

	for _, candidate := range []string{lookup.Result.AdminDistrict, lookup.Result.Parish, lookup.Result.AdminWard} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", nil
}
