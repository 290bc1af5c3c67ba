// Package routing computes driving-route distances via the OpenRouteService
// directions API.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	directionsURL = "https://api.openrouteservice.org/v2/directions/driving-car"

	// metersPerMile converts ORS route distances to miles.
	metersPerMile = 1609.344
)

// Client issues directions requests. The free ORS tier allows one request
// per second, so every call is gated by a limiter; a single Client serializes
// its own outbound calls.
type Client struct {
	httpClient *http.Client
	apiKey     string
	limiter    *rate.Limiter
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMinInterval overrides the minimum gap between directions calls.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// New creates a routing client for the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is available. Without one, distance
// computation is skipped entirely.
func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

// directionsRequest is the ORS request body. ORS expects [lon, lat] pairs.
type directionsRequest struct {
	Coordinates []geom.Coord `json:"coordinates"`
}

// directionsResponse carries the summary distance of the first route.
type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
		} `json:"summary"`
	} `json:"routes"`
}

// DrivingDistanceMiles returns the driving-route distance between two
// coordinate pairs, or nil on any provider failure. It never raises for
// upstream errors; failures are logged and degrade to a missing distance.
func (c *Client) DrivingDistanceMiles(ctx context.Context, lat1, lon1, lat2, lon2 float64) *float64 {
	if !c.Configured() {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		zap.L().Debug("routing: limiter wait aborted", zap.Error(err))
		return nil
	}

	miles, err := c.requestDistance(ctx, lat1, lon1, lat2, lon2)
	if err != nil {
		zap.L().Warn("routing: directions request failed", zap.Error(err))
		return nil
	}
	return &miles
}

func (c *Client) requestDistance(ctx context.Context, lat1, lon1, lat2, lon2 float64) (float64, error) {
	reqBody := directionsRequest{
		Coordinates: []geom.Coord{{lon1, lat1}, {lon2, lat2}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, eris.Wrap(err, "routing: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, directionsURL, bytes.NewReader(payload))
	if err != nil {
		return 0, eris.Wrap(err, "routing: build request")
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, eris.Wrap(err, "routing: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("routing: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, eris.Wrap(err, "routing: read body")
	}

	var directions directionsResponse
	if err := json.Unmarshal(body, &directions); err != nil {
		return 0, eris.Wrap(err, "routing: parse response")
	}
	if len(directions.Routes) == 0 {
		return 0, eris.New("routing: no routes in response")
	}

	return directions.Routes[0].Summary.Distance / metersPerMile, nil
}
