// Package geocode resolves free-text or coordinate-pair strings into
// locations via Nominatim (primary) with an ordered fallback cascade for
// opaque mobile-app queries: Photon, URL scrapes, encoded polylines,
// GeoNames and a region-qualified retry.
package geocode

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/milldrew/journeylog/internal/gazetteer"
	"github.com/milldrew/journeylog/internal/maplink"
	"github.com/milldrew/journeylog/internal/model"
)

// errNoResult marks a cascade step that completed but found nothing.
var errNoResult = eris.New("geocode: no result")

// Resolver converts address text into resolved locations. Curated known
// places short-circuit the network entirely; everything else goes through
// Nominatim, with the wide cascade reserved for opaque mobile queries.
type Resolver struct {
	httpClient   *http.Client
	userAgent    string
	known        *gazetteer.KnownAddresses
	geonamesUser string
	region       string
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client for all provider requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) { r.httpClient = hc }
}

// WithUserAgent sets the User-Agent sent to Nominatim, per its usage policy.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) { r.userAgent = ua }
}

// WithGeoNamesUser enables the GeoNames cascade step.
func WithGeoNamesUser(username string) Option {
	return func(r *Resolver) { r.geonamesUser = username }
}

// WithRegion sets the region suffix for the qualified-retry cascade step.
func WithRegion(region string) Option {
	return func(r *Resolver) { r.region = region }
}

// New creates a Resolver over the curated known-address list.
func New(known *gazetteer.KnownAddresses, opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  "journeylog/1.0",
		known:      known,
		region:     "Northern Ireland, UK",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve converts text into a location, or nil when the text is empty or
// every strategy misses. Upstream failures are logged and swallowed; Resolve
// never raises them.
func (r *Resolver) Resolve(ctx context.Context, text string) *model.LocationInfo {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Curated lookup first: frequently-visited addresses geocode imprecisely
	// on public services, so pinned coordinates win without network I/O.
	if loc := r.known.Lookup(text); loc != nil {
		return loc
	}

	if maplink.LooksLikeCoordPair(text) {
		lat, lon, ok := splitCoordPair(text)
		if !ok {
			return nil
		}
		loc, err := r.reverseNominatim(ctx, lat, lon)
		if err != nil {
			zap.L().Debug("geocode: reverse failed", zap.String("text", text), zap.Error(err))
			return nil
		}
		return loc
	}

	loc, err := r.forwardNominatim(ctx, text)
	if err != nil {
		zap.L().Debug("geocode: forward failed", zap.String("text", text), zap.Error(err))
		return nil
	}
	return loc
}

// splitCoordPair parses a strict "lat,lon" string into floats.
func splitCoordPair(text string) (lat, lon float64, ok bool) {
	parts := strings.SplitN(text, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

// pickTown chooses the display town from Nominatim address components.
func pickTown(address map[string]string) string {
	for _, key := range []string{"town", "city", "village"} {
		if v := address[key]; v != "" {
			return v
		}
	}
	return ""
}
